package objdef

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
)

//go:embed defs/*.yaml
var defFS embed.FS

var (
	// ErrUnknownObject is returned when no definition exists for an object ID.
	ErrUnknownObject = errors.New("unknown object")

	// ErrSingleInstance is returned when adding a second instance of a
	// single-instance resource.
	ErrSingleInstance = errors.New("resource is single-instance")
)

// ObjectDef describes an LwM2M object.
type ObjectDef struct {
	ID        uint16        `yaml:"id"`
	Name      string        `yaml:"name" validate:"required"`
	Multiple  bool          `yaml:"multiple"`
	Mandatory bool          `yaml:"mandatory"`
	Resources []ResourceDef `yaml:"resources" validate:"required,min=1,unique=ID,dive"`
}

// ResourceDef describes one resource of an object.
type ResourceDef struct {
	ID         uint16 `yaml:"id"`
	Name       string `yaml:"name" validate:"required"`
	Type       string `yaml:"type" validate:"required,oneof=none string integer unsigned float boolean opaque time objlink corelink"`
	Operations string `yaml:"operations" validate:"omitempty,oneof=R W RW E"`
	Multiple   bool   `yaml:"multiple"`
	Mandatory  bool   `yaml:"mandatory"`
	Units      string `yaml:"units,omitempty"`
}

var validate = validator.New()

// ResourceType returns the model type of the resource.
func (d *ResourceDef) ResourceType() model.ResourceType {
	t, _ := model.ParseResourceType(d.Type)
	return t
}

// Capabilities returns the operations the resource allows.
func (d *ResourceDef) Capabilities() model.Capability {
	var c model.Capability
	if strings.Contains(d.Operations, "R") {
		c |= model.CapRead
	}
	if strings.Contains(d.Operations, "W") {
		c |= model.CapWrite
	}
	if d.Operations == "E" {
		c |= model.CapExecute
	}
	return c
}

// Resource returns the definition of resource id.
func (d *ObjectDef) Resource(id uint16) (*ResourceDef, bool) {
	for i := range d.Resources {
		if d.Resources[i].ID == id {
			return &d.Resources[i], true
		}
	}
	return nil, false
}

// ResourceIDs returns the declared resource IDs in ascending order.
func (d *ObjectDef) ResourceIDs() []uint16 {
	ids := make([]uint16, 0, len(d.Resources))
	for _, r := range d.Resources {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	return ids
}

// Parse decodes and validates a YAML object definition.
func Parse(data []byte) (*ObjectDef, error) {
	var d ObjectDef
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing object definition: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the definition for structural errors.
func (d *ObjectDef) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("object %d: invalid definition: %s", d.ID, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("object %d: invalid definition: %w", d.ID, err)
	}
	for _, r := range d.Resources {
		if (r.Operations == "E") != (r.Type == "none") {
			return fmt.Errorf("object %d: resource %d: executable resources must have type none", d.ID, r.ID)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

var (
	cacheMu sync.RWMutex
	cache   = make(map[uint16]*ObjectDef)
)

// Load returns the embedded definition of object id.
func Load(id uint16) (*ObjectDef, error) {
	cacheMu.RLock()
	if d, ok := cache[id]; ok {
		cacheMu.RUnlock()
		return d, nil
	}
	cacheMu.RUnlock()

	data, err := defFS.ReadFile("defs/" + strconv.Itoa(int(id)) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownObject, id)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if d.ID != id {
		return nil, fmt.Errorf("definition file for object %d declares id %d", id, d.ID)
	}

	cacheMu.Lock()
	cache[id] = d
	cacheMu.Unlock()

	return d, nil
}

// Register adds d to the cache so Load and Instantiate can use it, replacing
// any embedded definition with the same ID.
func Register(d *ObjectDef) error {
	if err := d.Validate(); err != nil {
		return err
	}
	cacheMu.Lock()
	cache[d.ID] = d
	cacheMu.Unlock()
	return nil
}

// Available returns the IDs of all embedded definitions in ascending order.
func Available() ([]uint16, error) {
	entries, err := defFS.ReadDir("defs")
	if err != nil {
		return nil, fmt.Errorf("reading definitions directory: %w", err)
	}

	var ids []uint16
	for _, e := range entries {
		name := e.Name()
		if path.Ext(name) != ".yaml" {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSuffix(name, ".yaml"), 10, 16)
		if err != nil {
			continue
		}
		ids = append(ids, uint16(id))
	}
	slices.Sort(ids)
	return ids, nil
}

// ---------------------------------------------------------------------------
// Instantiation
// ---------------------------------------------------------------------------

// Instantiate builds instance instanceID of the object and adds it to reg.
//
// A resource is created for every entry in handlers and for every mandatory
// resource. Handler capabilities the definition does not allow are dropped.
// Multi-instance resources get instance 0. The registry is unchanged on error.
func (d *ObjectDef) Instantiate(reg *model.Registry, instanceID uint16, handlers map[uint16]model.Handlers) (*model.Object, error) {
	for rid := range handlers {
		if _, ok := d.Resource(rid); !ok {
			return nil, fmt.Errorf("%w: resource %d not defined for object %s", model.ErrNotFound, rid, d.Name)
		}
	}

	o := model.NewObject(d.ID, instanceID, d.Multiple)
	for _, rid := range d.ResourceIDs() {
		rd, _ := d.Resource(rid)
		h, ok := handlers[rid]
		if !ok && !rd.Mandatory {
			continue
		}
		r := reg.NewResource(rd.ID, 0, rd.ResourceType(), rd.Multiple, restrict(h, rd.Capabilities()))
		if err := o.AddResource(r); err != nil {
			return nil, err
		}
	}

	if err := reg.AddObject(o); err != nil {
		_ = o.Destroy()
		return nil, err
	}
	return o, nil
}

// AddResourceInstance adds another instance of a multi-instance resource to o.
func (d *ObjectDef) AddResourceInstance(reg *model.Registry, o *model.Object, rid, riid uint16, h model.Handlers) (*model.Resource, error) {
	rd, ok := d.Resource(rid)
	if !ok {
		return nil, fmt.Errorf("%w: resource %d not defined for object %s", model.ErrNotFound, rid, d.Name)
	}
	if !rd.Multiple && riid != 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrSingleInstance, d.Name, rd.Name)
	}
	r := reg.NewResource(rid, riid, rd.ResourceType(), rd.Multiple, restrict(h, rd.Capabilities()))
	if err := reg.AddResource(o.ID(), o.InstanceID(), r); err != nil {
		return nil, err
	}
	return r, nil
}

func restrict(h model.Handlers, allowed model.Capability) model.Handlers {
	if !allowed.CanRead() {
		h.Read = nil
	}
	if !allowed.CanWrite() {
		h.Write = nil
	}
	if !allowed.CanExecute() {
		h.Execute = nil
	}
	return h
}
