package msgspec

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/internal/layout"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Config configures a Loader.
type Config struct {
	// Paths are package roots searched in order. Each root holds
	// <pkg>/msg/<Type>.msg or, for install trees, share/<pkg>/msg/<Type>.msg.
	Paths []string

	// FS are extra roots with the same layout, searched after Paths.
	FS []fs.FS

	// Model lays out the produced schemas. The zero value selects the
	// 32-bit C layout.
	Model codec.Model
}

// PathsFromEnv returns the roots named by AMENT_PREFIX_PATH and
// ROS_PACKAGE_PATH.
func PathsFromEnv() []string {
	var out []string
	for _, env := range []string{"AMENT_PREFIX_PATH", "ROS_PACKAGE_PATH"} {
		for _, p := range filepath.SplitList(os.Getenv(env)) {
			if p != "" && !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Loader resolves message and service definitions by name and turns them
// into introspection schemas. Everything loaded is cached; a Loader is safe
// for concurrent use.
type Loader struct {
	roots   []fs.FS
	model   codec.Model
	msgs    map[string]*Spec
	srvs    map[string]*ServiceSpec
	schemas map[string]*introspection.MessageMembers
	mu      sync.Mutex
}

func NewLoader(cfg Config) *Loader {
	l := &Loader{
		model:   cfg.Model,
		msgs:    make(map[string]*Spec),
		srvs:    make(map[string]*ServiceSpec),
		schemas: make(map[string]*introspection.MessageMembers),
	}
	if l.model.Name == "" {
		l.model = codec.CStyleModel
	}
	for _, p := range cfg.Paths {
		l.roots = append(l.roots, os.DirFS(p))
	}
	l.roots = append(l.roots, cfg.FS...)
	return l
}

func (l *Loader) Model() codec.Model {
	return l.model
}

// AddMessage registers a definition given as text, shadowing any file of
// the same name.
func (l *Loader) AddMessage(pkg, name, text string) (*Spec, error) {
	spec, err := ParseMessage(pkg, name, pkg+"/msg/"+name+".msg", text)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs[spec.FullName()] = spec
	return spec, nil
}

// AddService registers a service definition given as text.
func (l *Loader) AddService(pkg, name, text string) (*ServiceSpec, error) {
	svc, err := ParseService(pkg, name, pkg+"/srv/"+name+".srv", text)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.srvs[svc.FullName()] = svc
	return svc, nil
}

// LoadMessage returns the parsed definition of "pkg/Name".
func (l *Loader) LoadMessage(full string) (*Spec, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadMessage(full)
}

func (l *Loader) loadMessage(full string) (*Spec, error) {
	pkg, name, err := SplitName(full)
	if err != nil {
		return nil, err
	}
	key := pkg + "/" + name
	if spec, ok := l.msgs[key]; ok {
		return spec, nil
	}
	file, text, err := l.find(pkg, "msg", name+".msg")
	if err != nil {
		return nil, err
	}
	spec, err := ParseMessage(pkg, name, file, text)
	if err != nil {
		return nil, err
	}
	l.msgs[key] = spec
	return spec, nil
}

// LoadService returns the parsed definition of "pkg/Name".
func (l *Loader) LoadService(full string) (*ServiceSpec, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadService(full)
}

func (l *Loader) loadService(full string) (*ServiceSpec, error) {
	pkg, name, err := SplitName(full)
	if err != nil {
		return nil, err
	}
	key := pkg + "/" + name
	if svc, ok := l.srvs[key]; ok {
		return svc, nil
	}
	file, text, err := l.find(pkg, "srv", name+".srv")
	if err != nil {
		return nil, err
	}
	svc, err := ParseService(pkg, name, file, text)
	if err != nil {
		return nil, err
	}
	l.srvs[key] = svc
	return svc, nil
}

func (l *Loader) find(pkg, kind, file string) (string, string, error) {
	candidates := []string{
		path.Join(pkg, kind, file),
		path.Join("share", pkg, kind, file),
	}
	for _, root := range l.roots {
		for _, name := range candidates {
			data, err := fs.ReadFile(root, name)
			if err == nil {
				return name, string(data), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", "", errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "reading "+name)
			}
		}
	}
	return "", "", errors.NotFound(errors.PhaseParse, kind, pkg+"/"+strings.TrimSuffix(file, "."+kind))
}

// Message returns the laid-out schema of "pkg/Name". Nested types are
// resolved through the loader; repeated requests return the same pointer.
func (l *Loader) Message(full string) (*introspection.MessageMembers, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mm, err := l.message(full)
	if err != nil {
		return nil, err
	}
	if err := l.place(mm); err != nil {
		return nil, err
	}
	return mm, nil
}

// Service returns the laid-out schemas of service "pkg/Name".
func (l *Loader) Service(full string) (*introspection.ServiceMembers, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	svc, err := l.loadService(full)
	if err != nil {
		return nil, err
	}
	sm := &introspection.ServiceMembers{
		Namespace: svc.Package + "__srv",
		Name:      svc.Name,
	}
	if sm.Request, err = l.schema(svc.Request, sm.Namespace, "srv"); err != nil {
		return nil, errors.WithPath(err, "request")
	}
	if sm.Response, err = l.schema(svc.Response, sm.Namespace, "srv"); err != nil {
		return nil, errors.WithPath(err, "response")
	}
	for _, mm := range []*introspection.MessageMembers{sm.Request, sm.Response} {
		if err := l.place(mm); err != nil {
			return nil, err
		}
	}
	return sm, nil
}

// place lays out a schema once. Placed schemas may already be shared with
// compiled plans and are never rewritten.
func (l *Loader) place(mm *introspection.MessageMembers) error {
	if mm.SizeOf != 0 {
		return nil
	}
	return layout.Place(mm, l.model)
}

// Discover lists the "pkg/Name" message definitions present under the
// configured roots without loading them.
func (l *Loader) Discover() ([]string, error) {
	seen := make(map[string]bool)
	for _, root := range l.roots {
		for _, pattern := range []string{"*/msg/*.msg", "share/*/msg/*.msg"} {
			matches, err := fs.Glob(root, pattern)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "scanning "+pattern)
			}
			for _, m := range matches {
				dir, file := path.Split(m)
				pkg := path.Base(path.Dir(path.Clean(dir)))
				seen[pkg+"/"+strings.TrimSuffix(file, ".msg")] = true
			}
		}
	}

	l.mu.Lock()
	for name := range l.msgs {
		seen[name] = true
	}
	l.mu.Unlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Names returns the full names of all message definitions loaded so far.
func (l *Loader) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.msgs))
	for name := range l.msgs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (l *Loader) message(full string) (*introspection.MessageMembers, error) {
	spec, err := l.loadMessage(full)
	if err != nil {
		return nil, err
	}
	return l.schema(spec, spec.Package+"__msg", "msg")
}

func (l *Loader) schema(spec *Spec, namespace, kind string) (*introspection.MessageMembers, error) {
	key := kind + ":" + spec.FullName()
	if mm, ok := l.schemas[key]; ok {
		return mm, nil
	}

	mm := &introspection.MessageMembers{Namespace: namespace, Name: spec.Name}
	// Stored before the members so a type reached again through a
	// sequence resolves to this schema.
	l.schemas[key] = mm

	mm.Members = make([]introspection.Member, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		m := introspection.Member{
			Name:             f.Name,
			StringUpperBound: f.StringBound,
			IsArray:          f.IsArray,
			ArraySize:        f.ArraySize,
			IsUpperBound:     f.IsUpperBound,
		}
		if id, ok := PrimitiveTypeID(f.Type); ok && f.Package == "" {
			m.TypeID = id
		} else {
			pkg := f.Package
			if pkg == "" {
				pkg = spec.Package
			}
			child, err := l.message(pkg + "/" + f.Type)
			if err != nil {
				delete(l.schemas, key)
				return nil, errors.WithPath(err, f.Name)
			}
			m.TypeID = introspection.TypeMessage
			m.Members = child
		}
		mm.Members = append(mm.Members, m)
	}
	return mm, nil
}
