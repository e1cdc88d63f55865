package ir

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"featgraph/internal/graph"
)

// Field numbers of the binary record.
const (
	recordSourceFile protowire.Number = 1
	recordNodes      protowire.Number = 2
	recordEdges      protowire.Number = 3
	recordRoot       protowire.Number = 4
	recordFirstToken protowire.Number = 5
	recordVersion    protowire.Number = 6

	nodeID        protowire.Number = 1
	nodeKind      protowire.Number = 2
	nodeContents  protowire.Number = 3
	nodeStart     protowire.Number = 4
	nodeEnd       protowire.Number = 5
	nodeStartLine protowire.Number = 6
	nodeEndLine   protowire.Number = 7

	edgeSource protowire.Number = 1
	edgeDest   protowire.Number = 2
	edgeKind   protowire.Number = 3
)

// MarshalBinary encodes the record in protobuf wire format. Kinds are
// written as their ordinals; offsets and lines as zigzag varints so -1
// stays compact.
func (r *Record) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendString(b, recordSourceFile, r.SourceFile)
	for _, n := range r.Nodes {
		b = protowire.AppendTag(b, recordNodes, protowire.BytesType)
		b = protowire.AppendBytes(b, n.appendWire(nil))
	}
	for _, e := range r.Edges {
		b = protowire.AppendTag(b, recordEdges, protowire.BytesType)
		b = protowire.AppendBytes(b, e.appendWire(nil))
	}
	if r.Root >= 0 {
		b = appendUint(b, recordRoot, uint64(r.Root))
	}
	if r.FirstToken >= 0 {
		b = appendUint(b, recordFirstToken, uint64(r.FirstToken))
	}
	b = appendString(b, recordVersion, r.Version)
	return b, nil
}

func (n Node) appendWire(b []byte) []byte {
	b = appendUint(b, nodeID, uint64(n.ID))
	b = appendUint(b, nodeKind, uint64(n.Kind))
	b = appendString(b, nodeContents, n.Contents)
	b = appendSint(b, nodeStart, n.Start)
	b = appendSint(b, nodeEnd, n.End)
	b = appendSint(b, nodeStartLine, n.StartLine)
	b = appendSint(b, nodeEndLine, n.EndLine)
	return b
}

func (e Edge) appendWire(b []byte) []byte {
	b = appendUint(b, edgeSource, uint64(e.Source))
	b = appendUint(b, edgeDest, uint64(e.Dest))
	b = appendUint(b, edgeKind, uint64(e.Kind))
	return b
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSint(b []byte, num protowire.Number, v int) []byte {
	return appendUint(b, num, protowire.EncodeZigZag(int64(v)))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// UnmarshalBinary decodes a record written by MarshalBinary. Unknown
// fields are skipped.
func (r *Record) UnmarshalBinary(data []byte) error {
	*r = Record{Root: -1, FirstToken: -1}
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == recordSourceFile && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			r.SourceFile = v
			return n, nil
		case num == recordVersion && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			r.Version = v
			return n, nil
		case num == recordNodes && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			node, err := unmarshalNode(v)
			if err != nil {
				return 0, err
			}
			r.Nodes = append(r.Nodes, node)
			return n, nil
		case num == recordEdges && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			edge, err := unmarshalEdge(v)
			if err != nil {
				return 0, err
			}
			r.Edges = append(r.Edges, edge)
			return n, nil
		case num == recordRoot && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.Root = int(v)
			return n, nil
		case num == recordFirstToken && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.FirstToken = int(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func unmarshalNode(data []byte) (Node, error) {
	n := Node{Start: -1, End: -1, StartLine: -1, EndLine: -1}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == nodeContents && typ == protowire.BytesType {
			v, m := protowire.ConsumeString(b)
			n.Contents = v
			return m, nil
		}
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, m := protowire.ConsumeVarint(b)
		switch num {
		case nodeID:
			n.ID = int(v)
		case nodeKind:
			n.Kind = graph.NodeKind(v)
		case nodeStart:
			n.Start = int(protowire.DecodeZigZag(v))
		case nodeEnd:
			n.End = int(protowire.DecodeZigZag(v))
		case nodeStartLine:
			n.StartLine = int(protowire.DecodeZigZag(v))
		case nodeEndLine:
			n.EndLine = int(protowire.DecodeZigZag(v))
		}
		return m, nil
	})
	return n, err
}

func unmarshalEdge(data []byte) (Edge, error) {
	var e Edge
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, m := protowire.ConsumeVarint(b)
		switch num {
		case edgeSource:
			e.Source = int(v)
		case edgeDest:
			e.Dest = int(v)
		case edgeKind:
			e.Kind = graph.EdgeKind(v)
		}
		return m, nil
	})
	return e, err
}

// consumeFields walks the fields of one message. field returns the
// number of bytes it consumed, or a negative protowire error code.
func consumeFields(data []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		m, err := field(num, typ, data)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(m))
		}
		data = data[m:]
	}
	return nil
}
