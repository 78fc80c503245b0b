// -----------------------------------------------------------------------
// Graph string compilation and neighbour generation
// -----------------------------------------------------------------------

package config

import (
	"fmt"
	"strings"

	"github.com/ternarybob/cursus/internal/models"
)

// graphNode is one parsed token of a graph expression.
type graphNode struct {
	name   string
	offset int64 // cycle offset relative to the owning recurrence point
	output string
}

// parseGraphNode parses "name", "name[-P1]", "name[+P2]" and an optional
// ":output" qualifier.
func parseGraphNode(token string) (graphNode, error) {
	node := graphNode{}
	token = strings.TrimSpace(token)
	if idx := strings.LastIndex(token, ":"); idx > 0 && !strings.Contains(token[idx:], "]") {
		node.output = token[idx+1:]
		token = token[:idx]
	}
	if idx := strings.Index(token, "["); idx >= 0 {
		if !strings.HasSuffix(token, "]") {
			return node, fmt.Errorf("invalid graph node %q: unterminated offset", token)
		}
		offsetStr := token[idx+1 : len(token)-1]
		token = token[:idx]
		dur, err := models.ParseISODuration(offsetStr)
		if err != nil {
			return node, fmt.Errorf("invalid graph offset in %q: %w", token, err)
		}
		node.offset = dur.IntegerOffset()
	}
	if token == "" {
		return node, fmt.Errorf("empty graph node")
	}
	node.name = token
	return node, nil
}

// compileGraph turns the per-recurrence graph strings into dependency
// templates on the task definitions. Returns the set of task names seen
// in the graph.
//
// Each "L1 & L2 => R" pair contributes R.parents += {L, L.offset} and
// L.children += {R, -L.offset}. Recurrences are applied at every cycle
// point of the integer sequence.
func (c *WorkflowConfig) compileGraph(graphs map[string]string) (map[string]bool, error) {
	tasks := map[string]bool{}
	for recurrence, graph := range graphs {
		if recurrence == "" {
			return nil, fmt.Errorf("empty graph recurrence key")
		}
		for _, line := range strings.Split(graph, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			segments := strings.Split(line, "=>")
			var prev []graphNode
			for _, segment := range segments {
				var nodes []graphNode
				for _, token := range strings.Split(segment, "&") {
					node, err := parseGraphNode(token)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, node)
					tasks[node.name] = true
					c.ensureTask(node.name)
				}
				if prev != nil {
					for _, right := range nodes {
						// Offsets on the right side of an arrow are not
						// supported; dependencies are expressed on the left.
						if right.offset != 0 {
							return nil, fmt.Errorf(
								"offset on dependent task %q is not supported", right.name)
						}
						for _, left := range prev {
							c.addDependency(left, right.name)
						}
					}
				}
				prev = nodes
			}
		}
	}
	return tasks, nil
}

func (c *WorkflowConfig) addDependency(left graphNode, right string) {
	rd := c.ensureTask(right)
	rd.ParentTemplates = append(rd.ParentTemplates, GraphTemplate{
		Name:   left.name,
		Offset: left.offset,
	})
	ld := c.ensureTask(left.name)
	ld.ChildTemplates = append(ld.ChildTemplates, GraphTemplate{
		Name:   right,
		Offset: -left.offset,
	})
}

// GraphChildren returns the downstream neighbours of a task at a point.
// Neighbours beyond the final cycle point are the walker's concern, not
// clipped here; pre-initial parents are legitimate dependencies.
func (c *WorkflowConfig) GraphChildren(td *TaskDef, point string) []models.GraphNeighbor {
	return c.applyTemplates(td.ChildTemplates, point)
}

// GraphParents returns the upstream neighbours of a task at a point.
func (c *WorkflowConfig) GraphParents(td *TaskDef, point string) []models.GraphNeighbor {
	return c.applyTemplates(td.ParentTemplates, point)
}

func (c *WorkflowConfig) applyTemplates(templates []GraphTemplate, point string) []models.GraphNeighbor {
	var out []models.GraphNeighbor
	seen := map[string]bool{}
	for _, t := range templates {
		neighborPoint := point
		if t.Offset != 0 {
			p, err := models.OffsetIntegerPoint(point, t.Offset)
			if err != nil {
				continue
			}
			neighborPoint = p
		}
		key := neighborPoint + "/" + t.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.GraphNeighbor{Name: t.Name, Point: neighborPoint})
	}
	return out
}

// PointsInRange lists the integer cycle points from the initial point to
// the final point inclusive; used by the pool to seed the first cycle.
func (c *WorkflowConfig) PointsInRange() []string {
	if c.CyclingMode != models.CyclingModeInteger {
		return []string{c.InitialCyclePoint}
	}
	var out []string
	point := c.InitialCyclePoint
	for {
		out = append(out, point)
		if c.FinalCyclePoint == "" || models.ComparePoints(point, c.FinalCyclePoint) >= 0 {
			break
		}
		next, err := models.OffsetIntegerPoint(point, 1)
		if err != nil {
			break
		}
		point = next
	}
	return out
}
