// -----------------------------------------------------------------------
// Data-store entity messages
//
// Field numbers are wire contract: they are preserved across revisions
// and must never be reused. Optional scalars are pointers so a partial
// update can distinguish "unchanged" from "set to zero value".
// -----------------------------------------------------------------------

package schemas

// Entity type keys. These double as publish topics.
const (
	WorkflowType      = "workflow"
	TasksType         = "tasks"
	TaskProxiesType   = "task_proxies"
	FamiliesType      = "families"
	FamilyProxiesType = "family_proxies"
	JobsType          = "jobs"
	EdgesType         = "edges"
	AllType           = "all"
	ShutdownTopic     = "shutdown"
)

// EntityTypeOrder is the fixed order in which buffered deltas are applied.
var EntityTypeOrder = []string{
	WorkflowType,
	TasksType,
	TaskProxiesType,
	FamiliesType,
	FamilyProxiesType,
	JobsType,
	EdgesType,
}

// TimeZoneInfo carries workflow timezone metadata.
type TimeZoneInfo struct {
	Hours          int32  // field 1
	Minutes        int32  // field 2
	StringBasic    string // field 3
	StringExtended string // field 4
}

// Runtime is the effective runtime configuration of a namespace or proxy,
// after any broadcast overlays.
type Runtime struct {
	Platform           string            // field 1
	Script             string            // field 2
	InitScript         string            // field 3
	EnvScript          string            // field 4
	ErrScript          string            // field 5
	ExitScript         string            // field 6
	PreScript          string            // field 7
	PostScript         string            // field 8
	WorkSubDir         string            // field 9
	ExecutionTimeLimit string            // field 10
	Environment        map[string]string // field 11
	Directives         map[string]string // field 12
	Outputs            map[string]string // field 13
}

// Output is one completion output of a task proxy.
type Output struct {
	Label     string  // field 1
	Message   string  // field 2
	Satisfied bool    // field 3
	Time      float64 // field 4
}

// PrereqCondition is one dependency condition within a prerequisite.
type PrereqCondition struct {
	TaskProxy string // field 1
	ExprAlias string // field 2
	ReqState  string // field 3
	Message   string // field 4
	Satisfied bool   // field 5
}

// Prerequisite is one structured prerequisite of a task proxy.
type Prerequisite struct {
	Expression  string             // field 1
	Conditions  []*PrereqCondition // field 2
	CyclePoints []string           // field 3
	Satisfied   bool               // field 4
}

// Trigger is an xtrigger or external trigger entry.
type Trigger struct {
	ID        string  // field 1
	Label     string  // field 2
	Message   string  // field 3
	Satisfied bool    // field 4
	Time      float64 // field 5
}

// StateTasks is the bounded FIFO of recent task identities for one state.
type StateTasks struct {
	Tasks []string // field 1
}

// Workflow is the singleton workflow record.
type Workflow struct {
	Stamp                  string                 // field 1
	ID                     string                 // field 2
	Name                   string                 // field 3
	Status                 string                 // field 4
	Host                   string                 // field 5
	Port                   int32                  // field 6
	Owner                  string                 // field 7
	Tasks                  []string               // field 8
	Families               []string               // field 9
	Edges                  []string               // field 10
	APIVersion             int32                  // field 11
	RuntimeVersion         string                 // field 12
	LastUpdated            float64                // field 13
	Meta                   map[string]string      // field 14
	NewestActiveCyclePoint string                 // field 15
	OldestActiveCyclePoint string                 // field 16
	Reloaded               *bool                  // field 17
	RunMode                string                 // field 18
	CyclingMode            string                 // field 19
	StateTotals            map[string]int32       // field 20
	TimeZoneInfo           *TimeZoneInfo          // field 21
	TreeDepth              int32                  // field 22
	NsDefOrder             []string               // field 23
	States                 []string               // field 24
	TaskProxies            []string               // field 25
	FamilyProxies          []string               // field 26
	StatusMsg              string                 // field 27
	IsHeldTotal            *int32                 // field 28
	Jobs                   []string               // field 29
	PubPort                int32                  // field 30
	Broadcasts             string                 // field 31
	IsQueuedTotal          *int32                 // field 32
	LatestStateTasks       map[string]*StateTasks // field 33
	Pruned                 *bool                  // field 34
	IsRunaheadTotal        *int32                 // field 35
	StatesUpdated          *bool                  // field 36
	NEdgeDistance          int32                  // field 37
	GraphWindowChanged     bool                   // field 38
}

// Task is a task definition.
type Task struct {
	Stamp           string            // field 1
	ID              string            // field 2
	Name            string            // field 3
	Meta            map[string]string // field 4
	MeanElapsedTime float64           // field 5
	Depth           int32             // field 6
	Proxies         []string          // field 7
	Namespace       []string          // field 8
	Parents         []string          // field 9
	FirstParent     string            // field 10
	Runtime         *Runtime          // field 11
}

// Family is a family definition.
type Family struct {
	Stamp         string            // field 1
	ID            string            // field 2
	Name          string            // field 3
	Meta          map[string]string // field 4
	Depth         int32             // field 5
	Proxies       []string          // field 6
	Parents       []string          // field 7
	ChildTasks    []string          // field 8
	ChildFamilies []string          // field 9
	FirstParent   string            // field 10
	Runtime       *Runtime          // field 11
}

// TaskProxy is a live task instance at a cycle point.
type TaskProxy struct {
	Stamp            string              // field 1
	ID               string              // field 2
	Task             string              // field 3
	State            *string             // field 4
	CyclePoint       string              // field 5
	Depth            int32               // field 6
	JobSubmits       *int32              // field 7
	Outputs          map[string]*Output  // field 8
	Namespace        []string            // field 9
	Prerequisites    []*Prerequisite     // field 10
	Jobs             []string            // field 11
	FirstParent      string              // field 12
	Name             string              // field 13
	IsHeld           *bool               // field 14
	Edges            []string            // field 15
	Ancestors        []string            // field 16
	FlowNums         string              // field 17
	ExternalTriggers map[string]*Trigger // field 18
	Xtriggers        map[string]*Trigger // field 19
	IsQueued         *bool               // field 20
	IsRunahead       *bool               // field 21
	Runtime          *Runtime            // field 22
	GraphDepth       *int32              // field 23
}

// FamilyProxy is a live family instance at a cycle point.
type FamilyProxy struct {
	Stamp           string           // field 1
	ID              string           // field 2
	CyclePoint      string           // field 3
	Name            string           // field 4
	Family          string           // field 5
	State           *string          // field 6
	Depth           int32            // field 7
	FirstParent     string           // field 8
	ChildTasks      []string         // field 9
	ChildFamilies   []string         // field 10
	IsHeld          *bool            // field 11
	Ancestors       []string         // field 12
	States          []string         // field 13
	StateTotals     map[string]int32 // field 14
	IsHeldTotal     *int32           // field 15
	IsQueued        *bool            // field 16
	IsQueuedTotal   *int32           // field 17
	IsRunahead      *bool            // field 18
	IsRunaheadTotal *int32           // field 19
	Runtime         *Runtime         // field 20
	GraphDepth      *int32           // field 21
}

// Job is one submission of a task proxy.
type Job struct {
	Stamp              string   // field 1
	ID                 string   // field 2
	SubmitNum          int32    // field 3
	State              *string  // field 4
	TaskProxy          string   // field 5
	SubmittedTime      float64  // field 6
	StartedTime        float64  // field 7
	FinishedTime       float64  // field 8
	JobID              string   // field 9
	JobRunnerName      string   // field 10
	ExecutionTimeLimit *float64 // field 11
	Platform           string   // field 12
	JobLogDir          string   // field 13
	Name               string   // field 14
	CyclePoint         string   // field 15
	Messages           []string // field 16
	Runtime            *Runtime // field 17
}

// Edge is a live dependency edge between two task proxies.
type Edge struct {
	Stamp   string // field 1
	ID      string // field 2
	Source  string // field 3
	Target  string // field 4
	Suicide bool   // field 5
	Cond    bool   // field 6
}

// Helper constructors for optional scalars.

func Bool(v bool) *bool          { return &v }
func Int32(v int32) *int32       { return &v }
func Float64(v float64) *float64 { return &v }
func String(v string) *string    { return &v }
