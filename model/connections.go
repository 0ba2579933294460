package model

import "sort"

// MainOutput is the connection type carrying regular item flow.
const MainOutput = "main"

// Edge is one target descriptor inside a port.
type Edge struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Port is one indexed output slot of a node.
type Port []Edge

// NodeOutputs maps a connection type to the node's ordered port list.
type NodeOutputs map[string][]Port

// Connections is the adjacency map keyed by source node name. Values are
// always in the canonical "array of ports, each an array of edges" shape;
// build it through Connect rather than by hand.
type Connections map[string]NodeOutputs

// Connect adds from[port] -> to(input). Missing ports below port are padded
// with empty ports; an identical edge is not added twice.
func (c Connections) Connect(from string, port int, to string, input int) bool {
	if port < 0 || input < 0 || from == "" || to == "" {
		return false
	}
	outs, ok := c[from]
	if !ok {
		outs = NodeOutputs{}
		c[from] = outs
	}
	ports := outs[MainOutput]
	for len(ports) <= port {
		ports = append(ports, Port{})
	}
	for _, e := range ports[port] {
		if e.Node == to && e.Index == input {
			outs[MainOutput] = ports
			return false
		}
	}
	ports[port] = append(ports[port], Edge{Node: to, Type: MainOutput, Index: input})
	outs[MainOutput] = ports
	return true
}

// EnsurePorts pads the main port list of from up to n ports.
func (c Connections) EnsurePorts(from string, n int) {
	outs, ok := c[from]
	if !ok {
		outs = NodeOutputs{}
		c[from] = outs
	}
	ports := outs[MainOutput]
	for len(ports) < n {
		ports = append(ports, Port{})
	}
	outs[MainOutput] = ports
}

// Ports returns the main port list of a node.
func (c Connections) Ports(from string) []Port {
	return c[from][MainOutput]
}

// Targets returns the names reached from any port of from: main ports first
// in port order, then other connection types sorted by name.
func (c Connections) Targets(from string) []string {
	outputs := c[from]
	types := make([]string, 0, len(outputs))
	for typ := range outputs {
		if typ != MainOutput {
			types = append(types, typ)
		}
	}
	sort.Strings(types)
	if _, ok := outputs[MainOutput]; ok {
		types = append([]string{MainOutput}, types...)
	}
	var out []string
	for _, typ := range types {
		for _, p := range outputs[typ] {
			for _, e := range p {
				out = append(out, e.Node)
			}
		}
	}
	return out
}

func (c Connections) HasOutgoing(from string) bool {
	for _, ports := range c[from] {
		for _, p := range ports {
			if len(p) > 0 {
				return true
			}
		}
	}
	return false
}

// IncomingSet walks every port of every source and returns the set of node
// names that appear as a target.
func (c Connections) IncomingSet() map[string]bool {
	in := map[string]bool{}
	for _, outs := range c {
		for _, ports := range outs {
			for _, p := range ports {
				for _, e := range p {
					in[e.Node] = true
				}
			}
		}
	}
	return in
}

// IncomingCount returns how many edges point at each node.
func (c Connections) IncomingCount() map[string]int {
	in := map[string]int{}
	for _, outs := range c {
		for _, ports := range outs {
			for _, p := range ports {
				for _, e := range p {
					in[e.Node]++
				}
			}
		}
	}
	return in
}

// RemoveTargets drops every edge whose target satisfies drop and returns how
// many were removed. Port positions are preserved.
func (c Connections) RemoveTargets(drop func(source string, e Edge) bool) int {
	removed := 0
	for src, outs := range c {
		for typ, ports := range outs {
			for i, p := range ports {
				kept := Port{}
				for _, e := range p {
					if drop(src, e) {
						removed++
						continue
					}
					kept = append(kept, e)
				}
				ports[i] = kept
			}
			outs[typ] = ports
		}
	}
	return removed
}

// Sources returns the source names in sorted order.
func (c Connections) Sources() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c Connections) Clone() Connections {
	if c == nil {
		return nil
	}
	out := make(Connections, len(c))
	for src, outs := range c {
		co := make(NodeOutputs, len(outs))
		for typ, ports := range outs {
			cp := make([]Port, len(ports))
			for i, p := range ports {
				cp[i] = append(Port{}, p...)
			}
			co[typ] = cp
		}
		out[src] = co
	}
	return out
}
