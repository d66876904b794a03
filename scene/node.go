package scene

import (
	"backdrop/core"
	"backdrop/math"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool
	Id        uint32

	CastShadow    bool
	ReceiveShadow bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIdCounter uint32 = 0

func NewNode(name string) *Node {
	nodeIdCounter++
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Visible:          true,
		Id:               nodeIdCounter,
		worldMatrixDirty: true,
	}
}

// NewMeshNode wraps mesh in a fresh node.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

// Clone returns a copy of n with its own transform and a new Id.
// The mesh (geometry and material) is shared by reference; children are
// cloned recursively. The copy has no parent.
func (n *Node) Clone() *Node {
	c := NewNode(n.Name)
	c.Transform = n.Transform
	c.Mesh = n.Mesh
	c.Visible = n.Visible
	c.CastShadow = n.CastShadow
	c.ReceiveShadow = n.ReceiveShadow
	for _, child := range n.Children {
		c.AddChild(child.Clone())
	}
	return c
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// WorldMatrix returns the local matrix composed with every ancestor's.
func (n *Node) WorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.Matrix()
		if n.Parent != nil {
			n.worldMatrix = localMatrix.Mul(n.Parent.WorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) Position() math.Vec3 {
	return n.Transform.Position
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

// TranslateZ moves the node distance units along its own Z axis.
func (n *Node) TranslateZ(distance float32) {
	n.Translate(n.Transform.Forward().Mul(distance))
}

func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
