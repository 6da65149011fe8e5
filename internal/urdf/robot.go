// Package urdf edits the collision geometry of a URDF robot description while
// keeping the rest of the document as it was read.
package urdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/ecopia-map/urdf_simplifier/internal/converters"
	"github.com/ecopia-map/urdf_simplifier/internal/converters/decimal_frame_converter"
	"github.com/ecopia-map/urdf_simplifier/internal/geometry"
)

var ErrNoRobot = errors.New("document has no <robot> element")

type GeometryKind string

const (
	MeshGeometry     GeometryKind = "mesh"
	BoxGeometry      GeometryKind = "box"
	CylinderGeometry GeometryKind = "cylinder"
	SphereGeometry   GeometryKind = "sphere"
	CapsuleGeometry  GeometryKind = "capsule"
)

// Geometry is the shape of a collision entry. Filename and Scale are only set
// for meshes.
type Geometry struct {
	Kind     GeometryKind
	Filename string
	Scale    geometry.Point3
}

func (g Geometry) IsMesh() bool {
	return g.Kind == MeshGeometry
}

type Robot struct {
	doc       *etree.Document
	element   *etree.Element
	converter converters.FrameConverter
}

// Parse reads a URDF document. Numbers written back use converter, or nine
// decimals when converter is nil.
func Parse(r io.Reader, converter converters.FrameConverter) (*Robot, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse urdf: %w", err)
	}
	if converter == nil {
		converter = decimal_frame_converter.NewDecimalFrameConverter(decimal_frame_converter.DefaultPrecision)
	}
	root := doc.Root()
	if root == nil || root.Space != "" || root.Tag != "robot" {
		return nil, ErrNoRobot
	}
	return &Robot{doc: doc, element: root, converter: converter}, nil
}

func ReadFile(path string, converter converters.FrameConverter) (*Robot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(bufio.NewReader(f), converter)
}

func (r *Robot) Name() string {
	return r.element.SelectAttrValue("name", "")
}

func (r *Robot) Links() []*Link {
	var links []*Link
	for _, e := range elements(r.element, "link") {
		links = append(links, &Link{element: e, robot: r})
	}
	return links
}

// Write serializes the document. Elements without children are written
// self-closing, everything else is written as it was read.
func (r *Robot) Write(w io.Writer) error {
	_, err := r.doc.WriteTo(w)
	return err
}

func (r *Robot) WriteFile(path string) error {
	return r.doc.WriteToFile(path)
}

type Link struct {
	element *etree.Element
	robot   *Robot
}

func (l *Link) Name() string {
	return l.element.SelectAttrValue("name", "")
}

func (l *Link) Collisions() []*Collision {
	var out []*Collision
	for i, e := range elements(l.element, "collision") {
		out = append(out, &Collision{element: e, link: l, Index: i})
	}
	return out
}

// RemoveCollision detaches c, and the indentation in front of it, from the link.
func (l *Link) RemoveCollision(c *Collision) bool {
	if c.element.Parent() != l.element {
		return false
	}
	if indent := indentBefore(c.element); indent != nil {
		l.element.RemoveChild(indent)
	}
	l.element.RemoveChild(c.element)
	return true
}

// Collision is one <collision> element. Index is its position among the
// collisions of its link when it was enumerated.
type Collision struct {
	element *etree.Element
	link    *Link
	Index   int
}

// ID names the collision for reports, e.g. "arm_link/collision[1]".
func (c *Collision) ID() string {
	if name := c.element.SelectAttrValue("name", ""); name != "" {
		return c.link.Name() + "/" + name
	}
	return c.link.Name() + "/collision[" + strconv.Itoa(c.Index) + "]"
}

// Origin returns the pose of the collision geometry in the link frame.
func (c *Collision) Origin() (geometry.RigidTransform, error) {
	origin := firstElement(c.element, "origin")
	if origin == nil {
		return geometry.Identity(), nil
	}
	return c.link.robot.converter.ParseOrigin(origin.SelectAttrValue("xyz", ""), origin.SelectAttrValue("rpy", ""))
}

func (c *Collision) Geometry() (Geometry, error) {
	g := firstElement(c.element, "geometry")
	if g == nil {
		return Geometry{}, fmt.Errorf("%s has no <geometry>", c.ID())
	}
	shapes := g.ChildElements()
	if len(shapes) == 0 {
		return Geometry{}, fmt.Errorf("%s has an empty <geometry>", c.ID())
	}

	shape := shapes[0]
	out := Geometry{Kind: GeometryKind(shape.FullTag())}
	if out.Kind != MeshGeometry {
		return out, nil
	}
	out.Filename = shape.SelectAttrValue("filename", "")
	if out.Filename == "" {
		return out, fmt.Errorf("%s has a mesh without filename", c.ID())
	}
	var err error
	out.Scale, err = converters.ParseVector3(shape.SelectAttrValue("scale", ""), geometry.Point3{1, 1, 1})
	if err != nil {
		return out, fmt.Errorf("%s mesh scale: %w", c.ID(), err)
	}
	return out, nil
}

// SetBox replaces the geometry with a box of the given full size placed at
// origin in the link frame.
func (c *Collision) SetBox(size geometry.Point3, origin geometry.RigidTransform) {
	conv := c.link.robot.converter
	xyz, rpy := conv.FormatOrigin(origin)

	originElement := firstElement(c.element, "origin")
	geometryElement := firstElement(c.element, "geometry")
	if originElement == nil {
		originElement = etree.NewElement("origin")
		if geometryElement == nil {
			c.element.AddChild(originElement)
		} else {
			// the new origin goes on its own line, indented like the geometry
			indent := indentBefore(geometryElement)
			c.element.InsertChildAt(geometryElement.Index(), originElement)
			if indent != nil {
				c.element.InsertChildAt(geometryElement.Index(), etree.NewText(indent.Data))
			}
		}
	}
	originElement.CreateAttr("xyz", xyz)
	originElement.CreateAttr("rpy", rpy)

	box := etree.NewElement("box")
	box.CreateAttr("size", conv.FormatVector(size))
	if geometryElement == nil {
		geometryElement = c.element.CreateElement("geometry")
	}

	// swap the shape element, keep the surrounding whitespace
	shapes := geometryElement.ChildElements()
	if len(shapes) == 0 {
		geometryElement.AddChild(box)
		return
	}
	geometryElement.InsertChildAt(shapes[0].Index(), box)
	for _, shape := range shapes {
		geometryElement.RemoveChild(shape)
	}
}

// elements returns the child elements of parent called tag, without namespace.
func elements(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, e := range parent.ChildElements() {
		if e.Space == "" && e.Tag == tag {
			out = append(out, e)
		}
	}
	return out
}

func firstElement(parent *etree.Element, tag string) *etree.Element {
	for _, e := range parent.ChildElements() {
		if e.Space == "" && e.Tag == tag {
			return e
		}
	}
	return nil
}

// indentBefore returns the whitespace text right before e, or nil.
func indentBefore(e *etree.Element) *etree.CharData {
	parent, i := e.Parent(), e.Index()
	if parent == nil || i <= 0 {
		return nil
	}
	text, ok := parent.Child[i-1].(*etree.CharData)
	if !ok || strings.TrimSpace(text.Data) != "" {
		return nil
	}
	return text
}
