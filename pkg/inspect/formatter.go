package inspect

import (
	"fmt"
	"strings"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowAttributes includes observation attributes and cache sizes
	ShowAttributes bool

	// ShowIDs includes numeric IDs alongside names
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowAttributes: true,
		ShowIDs:        true,
		IndentWidth:    2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

// FormatTree formats a registry snapshot, one line per object and resource.
func (f *Formatter) FormatTree(info *model.RegistryInfo) string {
	if len(info.Objects) == 0 {
		return "(no objects)\n"
	}

	var sb strings.Builder
	for _, o := range info.Objects {
		sb.WriteString(f.FormatObjectLine(o))
		sb.WriteString("\n")
		for _, r := range o.Resources {
			sb.WriteString(f.Indent(1, f.FormatResourceLine(o.ID, o.InstanceID, r)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatObjectLine formats the header line of an object instance.
func (f *Formatter) FormatObjectLine(o *model.ObjectInfo) string {
	uri := model.ObjectURI(o.ID, o.InstanceID)
	line := f.label(uri)
	if o.Multiple {
		line += " (multiple)"
	}
	if f.ShowAttributes && !o.Attributes.IsEmpty() {
		line += " {" + o.Attributes.String() + "}"
	}
	return line
}

// FormatResourceLine formats one resource of object oid/iid.
func (f *Formatter) FormatResourceLine(oid, iid uint16, r *model.ResourceInfo) string {
	uri := model.ResourceInstanceURI(oid, iid, r.ID, r.InstanceID)
	line := fmt.Sprintf("%s [%s] %s", f.label(uri), r.Capabilities, r.Type)
	if r.Multiple {
		line += "[]"
	}
	if f.ShowAttributes {
		if !r.Attributes.IsEmpty() {
			line += " {" + r.Attributes.String() + "}"
		}
		if r.CacheSize > 0 {
			line += fmt.Sprintf(" cache=%dB", r.CacheSize)
		}
	}
	return line
}

func (f *Formatter) label(uri model.URI) string {
	named := FormatURI(uri)
	if !f.ShowIDs {
		return named
	}
	if numeric := uri.String(); numeric != named {
		return numeric + " " + named
	}
	return named
}
