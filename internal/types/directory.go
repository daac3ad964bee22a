package types

// OperatorStatus is external presence state, unrelated to call KPIs
type OperatorStatus string

const (
	OperatorOnline  OperatorStatus = "online"
	OperatorBusy    OperatorStatus = "busy"
	OperatorOffline OperatorStatus = "offline"
)

// Queue is a named routing bucket
type Queue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Operator is a named agent
type Operator struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	GroupID string         `json:"groupId,omitempty"`
	Status  OperatorStatus `json:"status"`
}

// Group is a named collection of operators
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sentinel labels for references that do not resolve
const (
	UnknownQueueLabel    = "Unknown queue"
	UnknownOperatorLabel = "Unknown operator"
	UnassignedGroupLabel = "Unassigned"
)

// Directory bundles the lookup tables that call records reference
type Directory struct {
	Queues    []Queue    `json:"queues"`
	Operators []Operator `json:"operators"`
	Groups    []Group    `json:"groups"`
}

// QueueName resolves a queue id
func (d Directory) QueueName(id string) (string, bool) {
	for _, q := range d.Queues {
		if q.ID == id {
			return q.Name, true
		}
	}
	return "", false
}

// GroupName resolves a group id
func (d Directory) GroupName(id string) (string, bool) {
	for _, g := range d.Groups {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}

// Operator resolves an operator id
func (d Directory) Operator(id string) (Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return Operator{}, false
}
