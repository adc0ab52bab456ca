// Package animation parses slide timing trees (p:timing) into a normalized
// tree of sequence, parallel and effect nodes.
package animation

import (
	"encoding/json"
	"strconv"

	"github.com/tsawler/deckparse/opc"
)

// ContainerKind distinguishes the two container node shapes.
type ContainerKind string

const (
	Sequence ContainerKind = "sequence"
	Parallel ContainerKind = "parallel"
)

// EffectType identifies what a leaf effect does. The timing markup alone does
// not determine it reliably, so leaves always carry EffectUnknown.
type EffectType string

const EffectUnknown EffectType = "unknown"

// Timing is shared by every node. Delay and Duration are milliseconds; nil
// means unspecified or indefinite.
type Timing struct {
	Trigger  string `json:"trigger,omitempty"`
	Delay    *int64 `json:"delay,omitempty"`
	Duration *int64 `json:"duration,omitempty"`
}

// Node is either a *Container or an *Effect.
type Node interface {
	timing() Timing
}

// Container groups child nodes that play in sequence or in parallel.
type Container struct {
	Kind ContainerKind `json:"kind"`
	Timing
	// PresetClass is the effect class (entr, exit, emph, path, ...) declared
	// on the container's timing node, if any.
	PresetClass string `json:"presetClass,omitempty"`
	Children    []Node `json:"children"`
}

// Effect is a leaf that acts on one shape.
type Effect struct {
	Timing
	TargetShapeID string     `json:"targetShapeId,omitempty"`
	EffectType    EffectType `json:"effectType"`
}

func (c *Container) timing() Timing { return c.Timing }
func (e *Effect) timing() Timing    { return e.Timing }

// MarshalJSON adds the "effect" kind discriminator.
func (e *Effect) MarshalJSON() ([]byte, error) {
	type plain Effect
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*plain
	}{"effect", (*plain)(e)})
}

// TimingOf returns the timing of any node.
func TimingOf(n Node) Timing {
	if n == nil {
		return Timing{}
	}
	return n.timing()
}

// ParseTiming parses a p:timing element. The root is always a container:
// a single top-level par or seq is returned as is, several top-level nodes
// are wrapped in a parallel container. It reports false when the slide has
// no timing tree.
func ParseTiming(timing *opc.Node) (*Container, bool) {
	top := timing.Child("tnLst").Elements()
	if len(top) == 0 {
		return nil, false
	}
	if len(top) == 1 {
		if c, ok := Parse(top[0]).(*Container); ok {
			return c, true
		}
	}
	root := &Container{Kind: Parallel, Children: make([]Node, 0, len(top))}
	for _, n := range top {
		root.Children = append(root.Children, Parse(n))
	}
	return root, true
}

// Parse converts one time node. p:par and p:excl become parallel containers,
// p:seq a sequence container; children come from p:cTn/p:childTnLst in source
// order. Every other element becomes an effect leaf.
func Parse(n *opc.Node) Node {
	switch n.Name() {
	case "par", "excl":
		return parseContainer(n, Parallel)
	case "seq":
		return parseContainer(n, Sequence)
	}
	return parseEffect(n)
}

func parseContainer(n *opc.Node, kind ContainerKind) *Container {
	ctn := n.Child("cTn")
	c := &Container{
		Kind:     kind,
		Timing:   readTiming(ctn),
		Children: []Node{},
	}
	c.PresetClass, _ = ctn.Attr("presetClass")
	for _, child := range ctn.Child("childTnLst").Elements() {
		c.Children = append(c.Children, Parse(child))
	}
	return c
}

// behaviourParents are the elements under a leaf that carry its timing node
// and target.
var behaviourParents = []string{"cBhvr", "cMediaNode"}

func parseEffect(n *opc.Node) *Effect {
	e := &Effect{EffectType: EffectUnknown}
	for _, name := range behaviourParents {
		b := n.Child(name)
		if b == nil {
			continue
		}
		e.Timing = readTiming(b.Child("cTn"))
		if id, ok := b.Path("tgtEl", "spTgt").Attr("spid"); ok {
			e.TargetShapeID = id
		}
		break
	}
	return e
}

// readTiming reads trigger, delay and duration from a p:cTn element.
func readTiming(ctn *opc.Node) Timing {
	var t Timing
	if ctn == nil {
		return t
	}
	t.Trigger, _ = ctn.Attr("nodeType")

	conds := ctn.Child("stCondLst").ChildrenNamed("cond")
	if len(conds) > 0 {
		if v, ok := conds[0].Attr("delay"); ok {
			t.Delay = parseMillis(v)
		}
		if t.Trigger == "" {
			t.Trigger, _ = conds[0].Attr("evt")
		}
	}
	if v, ok := ctn.Attr("dur"); ok {
		t.Duration = parseMillis(v)
	}
	return t
}

func parseMillis(v string) *int64 {
	if v == "" || v == "indefinite" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
