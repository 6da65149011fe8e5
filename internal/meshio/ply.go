package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ecopia-map/urdf_simplifier/internal/data"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
)

var errPLYTruncated = errors.New("ply: unexpected end of data")

var plyTypeSizes = map[string]int{
	"char": 1, "int8": 1,
	"uchar": 1, "uint8": 1,
	"short": 2, "int16": 2,
	"ushort": 2, "uint16": 2,
	"int": 4, "int32": 4,
	"uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

type plyProperty struct {
	name      string
	typ       string
	countType string // set for list properties
}

type plyElement struct {
	name       string
	count      int
	properties []plyProperty
}

type plyHeader struct {
	format   string
	elements []plyElement
}

// plyValues yields the scalar values of the body in file order.
type plyValues interface {
	next(typ string) (float64, error)
	// remaining is the number of values of typ left in the body
	remaining(typ string) int
}

type plyASCIIValues struct {
	fields []string
	pos    int
}

func (v *plyASCIIValues) next(string) (float64, error) {
	if v.pos >= len(v.fields) {
		return 0, errPLYTruncated
	}
	f, err := strconv.ParseFloat(v.fields[v.pos], 64)
	v.pos++
	return f, err
}

func (v *plyASCIIValues) remaining(string) int {
	return len(v.fields) - v.pos
}

type plyBinaryValues struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func (v *plyBinaryValues) next(typ string) (float64, error) {
	size := plyTypeSizes[typ]
	if v.pos+size > len(v.buf) {
		return 0, errPLYTruncated
	}
	b := v.buf[v.pos : v.pos+size]
	v.pos += size
	switch typ {
	case "char", "int8":
		return float64(int8(b[0])), nil
	case "uchar", "uint8":
		return float64(b[0]), nil
	case "short", "int16":
		return float64(int16(v.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(v.order.Uint16(b)), nil
	case "int", "int32":
		return float64(int32(v.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(v.order.Uint32(b)), nil
	case "float", "float32":
		return float64(math.Float32frombits(v.order.Uint32(b))), nil
	case "double", "float64":
		return math.Float64frombits(v.order.Uint64(b)), nil
	}
	return 0, fmt.Errorf("ply: unknown type %q", typ)
}

func (v *plyBinaryValues) remaining(typ string) int {
	return (len(v.buf) - v.pos) / plyTypeSizes[typ]
}

func decodePLY(content []byte) (*data.TriangleMesh, error) {
	header, body, err := parsePLYHeader(content)
	if err != nil {
		return nil, err
	}

	var values plyValues
	switch header.format {
	case "ascii":
		values = &plyASCIIValues{fields: strings.Fields(string(body))}
	case "binary_little_endian":
		values = &plyBinaryValues{buf: body, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &plyBinaryValues{buf: body, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("ply: unsupported format %q", header.format)
	}

	var vertices []geometry.Point3
	var faces [][3]int
	for _, element := range header.elements {
		for i := 0; i < element.count; i++ {
			var vertex geometry.Point3
			var polygon []int
			for _, property := range element.properties {
				if property.countType != "" {
					list, err := readPLYList(values, property)
					if err != nil {
						return nil, err
					}
					if element.name == "face" && (property.name == "vertex_indices" || property.name == "vertex_index") {
						polygon = list
					}
					continue
				}
				value, err := values.next(property.typ)
				if err != nil {
					return nil, err
				}
				if element.name == "vertex" {
					switch property.name {
					case "x":
						vertex[0] = value
					case "y":
						vertex[1] = value
					case "z":
						vertex[2] = value
					}
				}
			}
			switch element.name {
			case "vertex":
				vertices = append(vertices, vertex)
			case "face":
				if len(polygon) >= 3 {
					faces = append(faces, fan(polygon)...)
				}
			}
		}
	}
	return data.NewTriangleMesh(vertices, faces), nil
}

func readPLYList(values plyValues, property plyProperty) ([]int, error) {
	n, err := values.next(property.countType)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(n) || n < 0 || n != math.Trunc(n) {
		return nil, fmt.Errorf("ply: invalid list length %g", n)
	}
	if n > float64(values.remaining(property.typ)) {
		return nil, fmt.Errorf("ply: list length %g exceeds the data left: %w", n, errPLYTruncated)
	}
	list := make([]int, int(n))
	for k := range list {
		v, err := values.next(property.typ)
		if err != nil {
			return nil, err
		}
		list[k] = int(v)
	}
	return list, nil
}

func parsePLYHeader(content []byte) (*plyHeader, []byte, error) {
	if !bytes.HasPrefix(content, []byte("ply")) {
		return nil, nil, errors.New("ply: missing magic")
	}
	end := bytes.Index(content, []byte("end_header"))
	if end < 0 {
		return nil, nil, errors.New("ply: missing end_header")
	}
	bodyStart := bytes.IndexByte(content[end:], '\n')
	if bodyStart < 0 {
		return nil, nil, errors.New("ply: missing end_header newline")
	}
	body := content[end+bodyStart+1:]

	header := &plyHeader{}
	for _, line := range strings.Split(string(content[:end]), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, nil, errors.New("ply: malformed format line")
			}
			header.format = fields[1]
		case "element":
			if len(fields) != 3 {
				return nil, nil, fmt.Errorf("ply: malformed element line %q", line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, nil, fmt.Errorf("ply: bad element count: %w", err)
			}
			header.elements = append(header.elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(header.elements) == 0 {
				return nil, nil, errors.New("ply: property before element")
			}
			property, err := parsePLYProperty(fields)
			if err != nil {
				return nil, nil, err
			}
			last := &header.elements[len(header.elements)-1]
			last.properties = append(last.properties, property)
		}
	}
	return header, body, nil
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	if len(fields) == 5 && fields[1] == "list" {
		if _, ok := plyTypeSizes[fields[2]]; !ok {
			return plyProperty{}, fmt.Errorf("ply: unknown type %q", fields[2])
		}
		if _, ok := plyTypeSizes[fields[3]]; !ok {
			return plyProperty{}, fmt.Errorf("ply: unknown type %q", fields[3])
		}
		return plyProperty{name: fields[4], typ: fields[3], countType: fields[2]}, nil
	}
	if len(fields) != 3 {
		return plyProperty{}, fmt.Errorf("ply: malformed property %q", strings.Join(fields, " "))
	}
	if _, ok := plyTypeSizes[fields[1]]; !ok {
		return plyProperty{}, fmt.Errorf("ply: unknown type %q", fields[1])
	}
	return plyProperty{name: fields[2], typ: fields[1]}, nil
}
