package extractor

import (
	"fmt"

	"github.com/hazyhaar/autoword-vnext/internal/automation"
)

// ApplyRevisionStrategy runs before the structural walk, per the
// configured strategy: accept folds every tracked insertion/deletion into
// the base text, reject discards every tracked insertion and restores
// every tracked deletion, and bypass extracts the markup as-is and records
// a warning that revisions may be visible in the projected text.
func ApplyRevisionStrategy(doc *automation.Document, strategy string, warnings *[]string) error {
	switch strategy {
	case "accept", "":
		acceptRevisions(doc.Body)
	case "reject":
		rejectRevisions(doc.Body)
	case "bypass":
		if hasTrackedChanges(doc.Body) {
			*warnings = append(*warnings, "revision_strategy=bypass: document contains tracked changes, extracted as-is")
		}
	default:
		return fmt.Errorf("extractor: unknown revision_strategy %q", strategy)
	}
	return nil
}

// acceptRevisions unwraps every <w:ins> in place (keeping its content) and
// deletes every <w:del> (discarding its content), the OOXML encoding of
// "accept all tracked changes".
func acceptRevisions(n *automation.Node) {
	walkAndRewrite(n, func(c *automation.Node) revisionAction {
		switch c.Local() {
		case "ins":
			return revisionAction{unwrap: true}
		case "del":
			return revisionAction{remove: true}
		}
		return revisionAction{}
	})
}

// rejectRevisions is the mirror image: deletions are restored (unwrapped,
// with their <w:delText> runs treated as ordinary text) and insertions are
// discarded.
func rejectRevisions(n *automation.Node) {
	walkAndRewrite(n, func(c *automation.Node) revisionAction {
		switch c.Local() {
		case "ins":
			return revisionAction{remove: true}
		case "del":
			return revisionAction{unwrap: true}
		}
		return revisionAction{}
	})
	renameDelTextRuns(n)
}

func renameDelTextRuns(n *automation.Node) {
	for _, delText := range n.Descendants("delText") {
		delText.Name = "w:t"
	}
}

type revisionAction struct {
	unwrap bool
	remove bool
}

// walkAndRewrite performs a single pass over n's subtree, applying decide
// to every node and unwrapping/removing matches. It restarts after each
// structural change since Children slices shift under mutation; documents
// have a bounded, small number of revision marks so this is not a
// performance concern.
func walkAndRewrite(n *automation.Node, decide func(*automation.Node) revisionAction) {
	changed := true
	for changed {
		changed = false
		var find func(*automation.Node) *automation.Node
		find = func(cur *automation.Node) *automation.Node {
			for _, c := range cur.Children {
				act := decide(c)
				if act.unwrap || act.remove {
					return c
				}
				if found := find(c); found != nil {
					return found
				}
			}
			return nil
		}
		target := find(n)
		if target == nil {
			continue
		}
		act := decide(target)
		parent := target.Parent
		if act.remove {
			parent.RemoveChild(target)
		} else if act.unwrap {
			idx := target.IndexInParent()
			if idx == -1 {
				continue
			}
			replacement := append([]*automation.Node(nil), target.Children...)
			for _, r := range replacement {
				r.Parent = parent
			}
			newChildren := append([]*automation.Node(nil), parent.Children[:idx]...)
			newChildren = append(newChildren, replacement...)
			newChildren = append(newChildren, parent.Children[idx+1:]...)
			parent.Children = newChildren
		}
		changed = true
	}
}

func hasTrackedChanges(n *automation.Node) bool {
	return len(n.Descendants("ins")) > 0 || len(n.Descendants("del")) > 0
}
