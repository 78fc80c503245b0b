// -----------------------------------------------------------------------
// Tokens - Canonical workflow/cycle/task/job identifiers
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"strings"
)

// Relative identifier namespaces that share the cycle slot with live points.
const (
	NamespacePrefix = "$namespace|"
	EdgePrefix      = "$edge|"
)

// Tokens is the parsed form of a canonical identifier. Trailing components
// may be empty. The same string form carries three identifier spaces:
// live ids (cycle is a cycle point), definition ids (cycle is
// "$namespace|<name>") and edge ids (cycle is "$edge|<left>|<right>").
type Tokens struct {
	User     string
	Workflow string
	Cycle    string
	Task     string
	Job      string
}

// WorkflowID returns the "~user/workflow" prefix.
func (t Tokens) WorkflowID() string {
	return "~" + t.User + "/" + t.Workflow
}

// RelativeID returns the id without the workflow prefix, e.g. "1/foo/01".
func (t Tokens) RelativeID() string {
	parts := []string{}
	for _, p := range []string{t.Cycle, t.Task, t.Job} {
		if p == "" {
			break
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "/")
}

// ID returns the canonical string form, e.g. "~bob/flow//1/foo/01".
func (t Tokens) ID() string {
	rel := t.RelativeID()
	if rel == "" {
		return t.WorkflowID()
	}
	return t.WorkflowID() + "//" + rel
}

// Duplicate returns a copy with the cycle/task/job components replaced.
// Empty strings clear the trailing components, matching construction of
// sibling ids from a workflow-level token set.
func (t Tokens) Duplicate(cycle, task, job string) Tokens {
	return Tokens{
		User:     t.User,
		Workflow: t.Workflow,
		Cycle:    cycle,
		Task:     task,
		Job:      job,
	}
}

// Definition returns the definition-space id for a namespace name,
// e.g. "~bob/flow//$namespace|foo".
func (t Tokens) Definition(name string) string {
	return t.WorkflowID() + "//" + NamespacePrefix + name
}

// Edge returns the edge-space id for a source/target relative id pair,
// e.g. "~bob/flow//$edge|1/a|2/b".
func (t Tokens) Edge(left, right Tokens) string {
	return t.WorkflowID() + "//" + EdgePrefix + left.RelativeID() + "|" + right.RelativeID()
}

// ParseTokens parses a canonical identifier back into its components.
// Parsing and construction are bijective for well-formed ids.
func ParseTokens(id string) (Tokens, error) {
	if !strings.HasPrefix(id, "~") {
		return Tokens{}, fmt.Errorf("invalid id %q: missing user prefix", id)
	}
	body := id[1:]
	var rel string
	if idx := strings.Index(body, "//"); idx >= 0 {
		rel = body[idx+2:]
		body = body[:idx]
	}
	slash := strings.Index(body, "/")
	if slash <= 0 {
		return Tokens{}, fmt.Errorf("invalid id %q: missing workflow name", id)
	}
	tokens := Tokens{User: body[:slash], Workflow: body[slash+1:]}
	if rel == "" {
		return tokens, nil
	}
	// Definition and edge ids keep their whole relative part in the cycle
	// slot; the embedded "|" separators are not path separators.
	if strings.HasPrefix(rel, NamespacePrefix) || strings.HasPrefix(rel, EdgePrefix) {
		tokens.Cycle = rel
		return tokens, nil
	}
	parts := strings.SplitN(rel, "/", 3)
	tokens.Cycle = parts[0]
	if len(parts) > 1 {
		tokens.Task = parts[1]
	}
	if len(parts) > 2 {
		tokens.Job = parts[2]
	}
	return tokens, nil
}

// TaskMessageRef is the permissive form accepted on the task message queue.
type TaskMessageRef struct {
	Cycle     string
	Task      string
	SubmitNum string
	State     string
}

// ParseTaskMessageID accepts "CYCLE/TASK/SUB", "CYCLE/TASK", "TASK.CYCLE.SUB",
// "TASK.CYCLE" or "TASK", each optionally suffixed with ":STATE".
func ParseTaskMessageID(id string) (TaskMessageRef, error) {
	ref := TaskMessageRef{}
	if idx := strings.LastIndex(id, ":"); idx >= 0 {
		ref.State = id[idx+1:]
		id = id[:idx]
	}
	if id == "" {
		return ref, fmt.Errorf("empty task message id")
	}
	switch {
	case strings.Contains(id, "/"):
		parts := strings.Split(id, "/")
		if len(parts) > 3 {
			return ref, fmt.Errorf("invalid task message id %q", id)
		}
		ref.Cycle = parts[0]
		if len(parts) > 1 {
			ref.Task = parts[1]
		}
		if len(parts) > 2 {
			ref.SubmitNum = parts[2]
		}
	case strings.Contains(id, "."):
		parts := strings.Split(id, ".")
		if len(parts) > 3 {
			return ref, fmt.Errorf("invalid task message id %q", id)
		}
		ref.Task = parts[0]
		if len(parts) > 1 {
			ref.Cycle = parts[1]
		}
		if len(parts) > 2 {
			ref.SubmitNum = parts[2]
		}
	default:
		ref.Task = id
	}
	if ref.Task == "" {
		return ref, fmt.Errorf("invalid task message id %q: no task name", id)
	}
	return ref, nil
}
