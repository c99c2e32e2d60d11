package domain

// ContainerKind identifies what a container is within a guild
type ContainerKind string

const (
	ContainerKindChannel  ContainerKind = "channel"
	ContainerKindCategory ContainerKind = "category"
	ContainerKindOther    ContainerKind = "other"
)

// Reportable returns true for the kinds a report can be built from
func (k ContainerKind) Reportable() bool {
	return k == ContainerKindChannel || k == ContainerKindCategory
}

// Container is a channel, category or any other channel-like record of a guild
type Container struct {
	ID       string        `json:"id"`
	GuildID  string        `json:"guild_id"`
	Name     string        `json:"name"`
	Kind     ContainerKind `json:"kind"`
	ParentID string        `json:"parent_id,omitempty"` // Category ID, empty when top-level
	Position int           `json:"position"`
	URL      string        `json:"url,omitempty"`
}

// HasParent returns true if the container sits inside a category
func (c *Container) HasParent() bool {
	return c.ParentID != ""
}

// IsChannel returns true for text channels
func (c *Container) IsChannel() bool {
	return c.Kind == ContainerKindChannel
}

// IsCategory returns true for categories
func (c *Container) IsCategory() bool {
	return c.Kind == ContainerKindCategory
}

// Namespace is a read-only snapshot of a guild's containers.
// Containers keep the order in which the platform enumerated them.
type Namespace struct {
	GuildID    string
	Containers []*Container

	index map[string]*Container
}

// NewNamespace builds a snapshot for a guild
func NewNamespace(guildID string, containers []*Container) *Namespace {
	ns := &Namespace{
		GuildID:    guildID,
		Containers: containers,
		index:      make(map[string]*Container, len(containers)),
	}
	for _, c := range containers {
		ns.index[c.ID] = c
	}
	return ns
}

// Get returns the container with the given ID
func (n *Namespace) Get(id string) (*Container, bool) {
	if n.index == nil {
		for _, c := range n.Containers {
			if c.ID == id {
				return c, true
			}
		}
		return nil, false
	}
	c, ok := n.index[id]
	return c, ok
}

// Len returns the number of containers in the snapshot
func (n *Namespace) Len() int {
	return len(n.Containers)
}
