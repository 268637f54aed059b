package viewer

import "github.com/matzehuels/btlive/pkg/surface"

// Attachment is a capability bound to a surface, such as pan and zoom. It
// runs on every attached or replaced surface before the index is built.
type Attachment interface {
	Attach(doc *surface.Document) error
}

// AttachmentFunc adapts a function to [Attachment].
type AttachmentFunc func(doc *surface.Document) error

// Attach calls f.
func (f AttachmentFunc) Attach(doc *surface.Document) error { return f(doc) }

// Fit makes the drawing scale to its container: the viewBox keeps the
// coordinate system while width and preserveAspectRatio let the page pan
// and zoom it.
var Fit = AttachmentFunc(func(doc *surface.Document) error {
	doc.SetAttr("width", "100%")
	doc.SetAttr("preserveAspectRatio", "xMidYMin meet")
	return nil
})
