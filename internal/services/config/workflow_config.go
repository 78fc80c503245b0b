// -----------------------------------------------------------------------
// Workflow definition loader
//
// Parses the flow TOML into task/family definitions, the inheritance
// maps and the per-sequence dependency templates the graph window
// walker consumes.
// -----------------------------------------------------------------------

package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

// RootFamily is the universal ancestor of every namespace.
const RootFamily = "root"

// GraphTemplate is one compiled dependency direction: the neighbour task
// name and the integer-cycling offset from the owning task's point.
type GraphTemplate struct {
	Name   string
	Offset int64
}

// TaskDef is a compiled task definition.
type TaskDef struct {
	Name            string
	Parents         []string
	Meta            map[string]string
	Runtime         *schemas.Runtime
	MeanElapsedTime float64
	Depth           int
	ChildTemplates  []GraphTemplate
	ParentTemplates []GraphTemplate
	Xtriggers       []string
	ExtTriggers     []string
	LateOffset      string
	ExpireOffset    string
}

// FamilyDef is a compiled family definition.
type FamilyDef struct {
	Name          string
	Parents       []string
	Meta          map[string]string
	Runtime       *schemas.Runtime
	Depth         int
	ChildTasks    []string
	ChildFamilies []string
}

// flowFile is the on-disk TOML shape.
type flowFile struct {
	Workflow struct {
		Name              string            `toml:"name" validate:"required"`
		CyclingMode       string            `toml:"cycling_mode"`
		InitialCyclePoint string            `toml:"initial_cycle_point" validate:"required"`
		FinalCyclePoint   string            `toml:"final_cycle_point"`
		RunMode           string            `toml:"run_mode"`
		UTCMode           bool              `toml:"utc_mode"`
		Meta              map[string]string `toml:"meta"`
	} `toml:"workflow"`
	Graph   map[string]string      `toml:"graph"`
	Runtime map[string]runtimeStub `toml:"runtime"`
}

type runtimeStub struct {
	Inherit            string            `toml:"inherit"`
	Script             string            `toml:"script"`
	PreScript          string            `toml:"pre_script"`
	PostScript         string            `toml:"post_script"`
	Platform           string            `toml:"platform"`
	ExecutionTimeLimit string            `toml:"execution_time_limit"`
	Environment        map[string]string `toml:"environment"`
	Directives         map[string]string `toml:"directives"`
	Outputs            map[string]string `toml:"outputs"`
	Meta               map[string]string `toml:"meta"`
	Xtriggers          []string          `toml:"xtriggers"`
	ExtTriggers        []string          `toml:"ext_triggers"`
	Late               string            `toml:"late"`
	ClockExpire        string            `toml:"clock_expire"`
}

// WorkflowConfig is the compiled workflow: the external collaborator
// contract the data store and scheduler consume.
type WorkflowConfig struct {
	Name              string
	CyclingMode       string
	InitialCyclePoint string
	FinalCyclePoint   string
	RunMode           string
	UTCMode           bool
	Meta              map[string]string

	TaskDefs map[string]*TaskDef
	Families map[string]*FamilyDef
	// NsDefOrder is the namespace definition order (sorted, tasks and
	// families interleaved) published on the workflow record.
	NsDefOrder []string
	// firstParentAncestors maps each namespace to its first-parent chain
	// excluding itself, leaf to root.
	firstParentAncestors map[string][]string
}

// LoadWorkflowFile reads and compiles a flow TOML file.
func LoadWorkflowFile(path string) (*WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return ParseWorkflow(data)
}

// ParseWorkflow compiles a flow TOML document.
func ParseWorkflow(data []byte) (*WorkflowConfig, error) {
	var file flowFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid workflow file: %w", err)
	}
	if file.Workflow.CyclingMode == "" {
		file.Workflow.CyclingMode = models.CyclingModeInteger
	}
	if file.Workflow.RunMode == "" {
		file.Workflow.RunMode = "live"
	}

	cfg := &WorkflowConfig{
		Name:                 file.Workflow.Name,
		CyclingMode:          file.Workflow.CyclingMode,
		InitialCyclePoint:    file.Workflow.InitialCyclePoint,
		FinalCyclePoint:      file.Workflow.FinalCyclePoint,
		RunMode:              file.Workflow.RunMode,
		UTCMode:              file.Workflow.UTCMode,
		Meta:                 file.Workflow.Meta,
		TaskDefs:             map[string]*TaskDef{},
		Families:             map[string]*FamilyDef{},
		firstParentAncestors: map[string][]string{},
	}

	graphTasks, err := cfg.compileGraph(file.Graph)
	if err != nil {
		return nil, err
	}

	// A namespace is a family when another namespace inherits from it and
	// it does not appear in the graph; every other namespace is a task.
	inherited := map[string]bool{}
	for _, stub := range file.Runtime {
		if stub.Inherit != "" && stub.Inherit != RootFamily {
			inherited[stub.Inherit] = true
		}
	}

	cfg.Families[RootFamily] = &FamilyDef{Name: RootFamily, Runtime: &schemas.Runtime{}}
	for name, stub := range file.Runtime {
		if name == RootFamily {
			cfg.Families[RootFamily].Runtime = stub.runtime()
			cfg.Families[RootFamily].Meta = stub.Meta
			continue
		}
		if inherited[name] && !graphTasks[name] {
			cfg.Families[name] = &FamilyDef{
				Name:    name,
				Parents: stub.parents(),
				Meta:    stub.Meta,
				Runtime: stub.runtime(),
			}
		}
	}
	for name, stub := range file.Runtime {
		if name == RootFamily || cfg.Families[name] != nil {
			continue
		}
		td := cfg.ensureTask(name)
		td.Parents = stub.parents()
		td.Meta = stub.Meta
		td.Runtime = stub.runtime()
		td.Xtriggers = stub.Xtriggers
		td.ExtTriggers = stub.ExtTriggers
		td.LateOffset = stub.Late
		td.ExpireOffset = stub.ClockExpire
	}

	if err := cfg.resolveInheritance(); err != nil {
		return nil, err
	}
	cfg.NsDefOrder = cfg.nsDefOrder()
	return cfg, nil
}

func (s runtimeStub) parents() []string {
	if s.Inherit == "" {
		return []string{RootFamily}
	}
	parents := []string{}
	for _, p := range strings.Split(s.Inherit, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parents = append(parents, p)
		}
	}
	if len(parents) == 0 {
		parents = []string{RootFamily}
	}
	return parents
}

func (s runtimeStub) runtime() *schemas.Runtime {
	return &schemas.Runtime{
		Platform:           s.Platform,
		Script:             s.Script,
		PreScript:          s.PreScript,
		PostScript:         s.PostScript,
		ExecutionTimeLimit: s.ExecutionTimeLimit,
		Environment:        s.Environment,
		Directives:         s.Directives,
		Outputs:            s.Outputs,
	}
}

// ensureTask returns the task definition, creating a bare one (root
// parent, empty runtime) for tasks that only appear in the graph.
func (c *WorkflowConfig) ensureTask(name string) *TaskDef {
	td, ok := c.TaskDefs[name]
	if !ok {
		td = &TaskDef{
			Name:    name,
			Parents: []string{RootFamily},
			Runtime: &schemas.Runtime{},
		}
		c.TaskDefs[name] = td
	}
	return td
}

// resolveInheritance computes first-parent ancestry, family membership
// and namespace depths.
func (c *WorkflowConfig) resolveInheritance() error {
	parentsOf := func(name string) []string {
		if td, ok := c.TaskDefs[name]; ok {
			return td.Parents
		}
		if fd, ok := c.Families[name]; ok {
			if name == RootFamily {
				return nil
			}
			if len(fd.Parents) == 0 {
				return []string{RootFamily}
			}
			return fd.Parents
		}
		return nil
	}

	for name := range c.TaskDefs {
		chain, err := c.firstParentChain(name, parentsOf)
		if err != nil {
			return err
		}
		c.firstParentAncestors[name] = chain
		c.TaskDefs[name].Depth = len(chain)
	}
	for name := range c.Families {
		if name == RootFamily {
			c.firstParentAncestors[name] = nil
			continue
		}
		chain, err := c.firstParentChain(name, parentsOf)
		if err != nil {
			return err
		}
		c.firstParentAncestors[name] = chain
		c.Families[name].Depth = len(chain)
	}

	// Family membership follows the first parent only: the proxy tree is
	// single-inheritance even when runtime inheritance is multiple.
	for name, td := range c.TaskDefs {
		parent := td.Parents[0]
		fd, ok := c.Families[parent]
		if !ok {
			return fmt.Errorf("task %q inherits from undefined namespace %q", name, parent)
		}
		fd.ChildTasks = append(fd.ChildTasks, name)
	}
	for name, fd := range c.Families {
		if name == RootFamily {
			continue
		}
		parent := RootFamily
		if len(fd.Parents) > 0 {
			parent = fd.Parents[0]
		}
		pfd, ok := c.Families[parent]
		if !ok {
			return fmt.Errorf("family %q inherits from undefined namespace %q", name, parent)
		}
		pfd.ChildFamilies = append(pfd.ChildFamilies, name)
	}
	for _, fd := range c.Families {
		sort.Strings(fd.ChildTasks)
		sort.Strings(fd.ChildFamilies)
	}
	return nil
}

func (c *WorkflowConfig) firstParentChain(name string, parentsOf func(string) []string) ([]string, error) {
	chain := []string{}
	seen := map[string]bool{name: true}
	current := name
	for current != RootFamily {
		parents := parentsOf(current)
		if len(parents) == 0 {
			if current != name {
				// Undeclared intermediate namespace: treat as root child.
				break
			}
			chain = append(chain, RootFamily)
			break
		}
		next := parents[0]
		if seen[next] {
			return nil, fmt.Errorf("inheritance cycle at namespace %q", next)
		}
		seen[next] = true
		chain = append(chain, next)
		current = next
	}
	if len(chain) == 0 || chain[len(chain)-1] != RootFamily {
		chain = append(chain, RootFamily)
	}
	return chain, nil
}

// FirstParentAncestors returns the first-parent chain of a namespace,
// excluding itself, leaf to root. Unknown namespaces get a root chain.
func (c *WorkflowConfig) FirstParentAncestors(name string) []string {
	if chain, ok := c.firstParentAncestors[name]; ok {
		return chain
	}
	return []string{RootFamily}
}

func (c *WorkflowConfig) nsDefOrder() []string {
	names := make([]string, 0, len(c.TaskDefs)+len(c.Families))
	for name := range c.TaskDefs {
		names = append(names, name)
	}
	for name := range c.Families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TreeDepth returns the deepest namespace depth, for the workflow record.
func (c *WorkflowConfig) TreeDepth() int {
	depth := 0
	for _, td := range c.TaskDefs {
		if td.Depth > depth {
			depth = td.Depth
		}
	}
	return depth
}
