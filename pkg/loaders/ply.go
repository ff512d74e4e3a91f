package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// ErrInvalidPLY is returned for malformed or unsupported PLY input
var ErrInvalidPLY = errors.New("loaders: invalid PLY")

// PLY formats
const (
	FormatASCII              = "ascii"
	FormatBinaryLittleEndian = "binary_little_endian"
	FormatBinaryBigEndian    = "binary_big_endian"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // One of the Format constants
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one "element" block of the header, in file order
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the geometry loaded from a PLY file
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle), polygons fan-triangulated
	Normals  []core.Vec3 // Per-vertex normals, empty if not present
	Colors   []core.Vec3 // Per-vertex colors in [0,1], empty if not present
}

// TriangleCount returns the number of triangles after triangulation
func (d *PLYData) TriangleCount() int {
	return len(d.Faces) / 3
}

// TriangleMesh builds a mesh over the loaded triangles
func (d *PLYData) TriangleMesh(material core.Material, opts bvh.Options) (*geometry.TriangleMesh, error) {
	return geometry.NewTriangleMesh(d.Vertices, d.Faces, material, &geometry.TriangleMeshOptions{BVH: opts})
}

// LoadPLY loads a PLY file and returns its vertex and face data
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// ReadPLY parses PLY data in any of the three standard formats
func ReadPLY(r io.Reader) (*PLYData, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	var values valueReader
	switch header.Format {
	case FormatASCII:
		scanner := bufio.NewScanner(br)
		scanner.Split(bufio.ScanWords)
		values = &asciiValues{scanner: scanner}
	case FormatBinaryLittleEndian:
		values = &binaryValues{r: br, order: binary.LittleEndian}
	case FormatBinaryBigEndian:
		values = &binaryValues{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPLY, header.Format)
	}

	data := &PLYData{}
	for _, elem := range header.Elements {
		switch elem.Name {
		case "vertex":
			err = readVertices(values, elem, data)
		case "face":
			err = readFaces(values, elem, data)
		default:
			err = skipElement(values, elem)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, idx := range data.Faces {
		if idx < 0 || idx >= len(data.Vertices) {
			return nil, fmt.Errorf("%w: face index %d out of range [0,%d)", ErrInvalidPLY, idx, len(data.Vertices))
		}
	}
	return data, nil
}

// parsePLYHeader reads up to and including end_header, leaving br at the
// first byte of the body
func parsePLYHeader(br *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var current *PLYElement

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("%w: header ended before end_header", ErrInvalidPLY)
		}
		parts := strings.Fields(line)

		if lineNo == 1 {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrInvalidPLY)
			}
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("%w: no format line", ErrInvalidPLY)
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: line %d: bad format line", ErrInvalidPLY, lineNo)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: line %d: bad element line", ErrInvalidPLY, lineNo)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid element count %q", ErrInvalidPLY, lineNo, parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
			current = &header.Elements[len(header.Elements)-1]
		case "property":
			if current == nil {
				return nil, fmt.Errorf("%w: line %d: property before element", ErrInvalidPLY, lineNo)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidPLY, lineNo, err)
			}
			current.Props = append(current.Props, prop)
		default:
			return nil, fmt.Errorf("%w: line %d: unknown keyword %q", ErrInvalidPLY, lineNo, parts[0])
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop := PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}
		if typeSize(prop.ListType) == 0 || typeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unsupported list types %s %s", prop.ListType, prop.DataType)
		}
		return prop, nil
	}

	if typeSize(parts[0]) == 0 {
		return PLYProperty{}, fmt.Errorf("unsupported data type: %s", parts[0])
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

func readVertices(values valueReader, elem PLYElement, data *PLYData) error {
	idx := map[string]int{}
	for i, p := range elem.Props {
		if !p.IsList {
			idx[p.Name] = i
		}
	}
	for _, axis := range []string{"x", "y", "z"} {
		if _, ok := idx[axis]; !ok {
			return fmt.Errorf("%w: vertex element has no %s property", ErrInvalidPLY, axis)
		}
	}
	x, y, z := idx["x"], idx["y"], idx["z"]
	nx, hasNX := idx["nx"]
	ny, hasNY := idx["ny"]
	nz, hasNZ := idx["nz"]
	hasNormals := hasNX && hasNY && hasNZ
	red, hasRed := idx["red"]
	green, hasGreen := idx["green"]
	blue, hasBlue := idx["blue"]
	hasColors := hasRed && hasGreen && hasBlue

	data.Vertices = make([]core.Vec3, 0, elem.Count)
	if hasNormals {
		data.Normals = make([]core.Vec3, 0, elem.Count)
	}
	if hasColors {
		data.Colors = make([]core.Vec3, 0, elem.Count)
	}

	row := make([]float64, len(elem.Props))
	for i := 0; i < elem.Count; i++ {
		if err := readRow(values, elem.Props, row); err != nil {
			return fmt.Errorf("%w: vertex %d: %v", ErrInvalidPLY, i, err)
		}
		data.Vertices = append(data.Vertices, core.NewVec3(row[x], row[y], row[z]))
		if hasNormals {
			data.Normals = append(data.Normals, core.NewVec3(row[nx], row[ny], row[nz]))
		}
		if hasColors {
			data.Colors = append(data.Colors, core.NewVec3(
				colorChannel(row[red], elem.Props[red].Type),
				colorChannel(row[green], elem.Props[green].Type),
				colorChannel(row[blue], elem.Props[blue].Type),
			))
		}
	}
	return nil
}

// colorChannel maps integer channels from [0,255] to [0,1]
func colorChannel(v float64, typ string) float64 {
	switch typ {
	case "uchar", "uint8":
		return v / 255.0
	}
	return v
}

// readRow reads one non-list row; list properties are skipped
func readRow(values valueReader, props []PLYProperty, row []float64) error {
	for j, p := range props {
		if p.IsList {
			if err := skipList(values, p); err != nil {
				return err
			}
			continue
		}
		v, err := values.scalar(p.Type)
		if err != nil {
			return fmt.Errorf("property %s: %w", p.Name, err)
		}
		row[j] = v
	}
	return nil
}

func readFaces(values valueReader, elem PLYElement, data *PLYData) error {
	data.Faces = make([]int, 0, elem.Count*3)

	var polygon []int
	for i := 0; i < elem.Count; i++ {
		found := false
		for _, p := range elem.Props {
			if !p.IsList || (p.Name != "vertex_indices" && p.Name != "vertex_index") {
				if err := skipProperty(values, p); err != nil {
					return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, i, err)
				}
				continue
			}

			n, err := listLength(values, p)
			if err != nil {
				return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, i, err)
			}
			if n < 3 {
				return fmt.Errorf("%w: face %d has %d vertices", ErrInvalidPLY, i, n)
			}
			polygon = polygon[:0]
			for k := 0; k < n; k++ {
				v, err := values.scalar(p.DataType)
				if err != nil {
					return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, i, err)
				}
				polygon = append(polygon, int(v))
			}

			// Fan triangulation around the first vertex
			for k := 1; k+1 < n; k++ {
				data.Faces = append(data.Faces, polygon[0], polygon[k], polygon[k+1])
			}
			found = true
		}
		if !found {
			return fmt.Errorf("%w: face element has no vertex_indices list", ErrInvalidPLY)
		}
	}
	return nil
}

func skipElement(values valueReader, elem PLYElement) error {
	for i := 0; i < elem.Count; i++ {
		for _, p := range elem.Props {
			if err := skipProperty(values, p); err != nil {
				return fmt.Errorf("%w: %s %d: %v", ErrInvalidPLY, elem.Name, i, err)
			}
		}
	}
	return nil
}

func skipProperty(values valueReader, p PLYProperty) error {
	if p.IsList {
		return skipList(values, p)
	}
	_, err := values.scalar(p.Type)
	return err
}

func skipList(values valueReader, p PLYProperty) error {
	n, err := listLength(values, p)
	if err != nil {
		return err
	}
	for k := 0; k < n; k++ {
		if _, err := values.scalar(p.DataType); err != nil {
			return err
		}
	}
	return nil
}

func listLength(values valueReader, p PLYProperty) (int, error) {
	v, err := values.scalar(p.ListType)
	if err != nil {
		return 0, err
	}
	if v < 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("invalid list length %v", v)
	}
	return int(v), nil
}

// typeSize returns the size in bytes of a PLY data type, 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// valueReader yields scalar values from a PLY body
type valueReader interface {
	scalar(dataType string) (float64, error)
}

type asciiValues struct {
	scanner *bufio.Scanner
}

func (a *asciiValues) scalar(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", dataType, err)
	}
	return v, nil
}

type binaryValues struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) scalar(dataType string) (float64, error) {
	n := typeSize(dataType)
	if n == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	if _, err := io.ReadFull(b.r, b.buf[:n]); err != nil {
		return 0, err
	}
	buf := b.buf[:n]

	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default: // double, float64
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}
