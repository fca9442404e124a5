package decl

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/scanner"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// plain spells types as readable pseudo-syntax.
var plain = TypeTable{
	Number:   "num",
	String:   "str",
	Boolean:  "bool",
	Any:      "any",
	Void:     "void",
	Sequence: func(e string) string { return "seq<" + e + ">" },
	Map:      func(k, v string) string { return "map<" + k + "," + v + ">" },
	Optional: func(t string) string { return "opt<" + t + ">" },
	Function: func(params []Param, ret string) string {
		var ps []string
		for _, p := range params {
			ps = append(ps, p.Type)
		}
		return "fn(" + strings.Join(ps, ",") + ")->" + ret
	},
	Enum:     func(name string) string { return "enum<" + name + ">" },
	Tuple:    func(elems []string) string { return "tuple<" + strings.Join(elems, ",") + ">" },
	Keywords: map[string]bool{"end": true},
}

func build(t *testing.T, opts Options, texts ...string) []Unit {
	t.Helper()
	sc := scanner.New(discard, scanner.Options{})
	var files []*ir.File
	for i, text := range texts {
		files = append(files, sc.ScanFile(string(rune('a'+i))+".h", text))
	}
	prog, err := linker.Link(discard, files, linker.Options{})
	require.NoError(t, err)
	md := meta.Build(prog)
	var out []Unit
	for _, u := range md.Units {
		out = append(out, Build(md, u, plain, opts))
	}
	return out
}

func TestClassModel(t *testing.T) {
	units := build(t, Options{}, `
struct [[BIND_TYPE]] Car {
	enum class [[BIND_ENUM]] Gear { Park, Drive = 3, Alias = Park };
	[[BIND_CTOR]] Car();
	[[BIND_CTOR]] Car(int seats);
	[[BIND_FUNC]] float get_Speed() const;
	[[BIND_FUNC]] void Honk(int end, ...);
	[[BIND_META_FUNC(to_string)]] std::string str() const;
	[[BIND_VAR_READONLY]] std::vector<int> gears;
	[[BIND_VAR]] static int count;
};`)
	require.Len(t, units, 1)
	u := units[0]

	want := Class{
		Name: "Car",
		Constructors: []Function{
			{Name: "new", Return: "Car"},
			{Name: "new", Params: []Param{{Name: "seats", Type: "num"}}, Return: "Car"},
		},
		Methods: []Function{
			{Name: "Honk", Params: []Param{{Name: "end_", Type: "num"}, {Name: "args", Type: "any", Variadic: true}}, Return: "void"},
			{Name: "__to_string", Return: "str"},
		},
		Properties: []Property{{Name: "Speed", Type: "num", Readonly: true}},
		Fields: []Field{
			{Name: "gears", Type: "seq<num>", Readonly: true},
			{Name: "count", Type: "num", Static: true},
		},
	}
	require.Len(t, u.Classes, 1)
	if diff := cmp.Diff(want, u.Classes[0]); diff != "" {
		t.Errorf("class mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []Enum{{Name: "Gear", Items: []EnumItem{
		{Name: "Park", Value: "0"},
		{Name: "Drive", Value: "3"},
		{Name: "Alias"},
	}}}, u.Enums)
}

func TestCollapsedOverloads(t *testing.T) {
	units := build(t, Options{}, `
[[BIND_FUNC]] void Foo(int a);
[[BIND_FUNC]] void Foo(float b);
[[BIND_FUNC]] void Foo(const std::string& a);
struct [[BIND_TYPE]] Meter {
	[[BIND_CTOR]] Meter(int v);
	[[BIND_CTOR]] Meter(double v);
	[[BIND_FUNC]] void Add(int v);
	[[BIND_FUNC]] void Add(float v);
	[[BIND_FUNC]] int Add(int v, int w);
};`)
	require.Len(t, units, 1)
	u := units[0]

	assert.Equal(t, []Function{
		{Name: "Foo", Params: []Param{{Name: "a", Type: "num"}}, Return: "void", Static: true},
		{Name: "Foo", Params: []Param{{Name: "a", Type: "str"}}, Return: "void", Static: true},
	}, u.Globals.Functions)

	require.Len(t, u.Classes, 1)
	assert.Equal(t, []Function{
		{Name: "new", Params: []Param{{Name: "v", Type: "num"}}, Return: "Meter"},
	}, u.Classes[0].Constructors)
	assert.Equal(t, []Function{
		{Name: "Add", Params: []Param{{Name: "v", Type: "num"}}, Return: "void"},
		{Name: "Add", Params: []Param{{Name: "v", Type: "num"}, {Name: "w", Type: "num"}}, Return: "num"},
	}, u.Classes[0].Methods)
}

func TestNamespaceModel(t *testing.T) {
	units := build(t, Options{Root: "bindings"}, `
namespace [[BIND_NAMESPACE]] bindings {
	[[BIND_FUNC]] void log(const std::string& msg);
	namespace [[BIND_NAMESPACE]] util {
		[[BIND_FUNC]] int id();
	}
}
namespace [[BIND_NAMESPACE]] world {
	[[BIND_VAR_OPTIONAL]] std::optional<float> gravity;
	namespace [[BIND_NAMESPACE]] physics {
		[[BIND_FUNC]] void step(std::function<void(float)> cb);
	}
}
[[BIND_FUNC]] int version();`, `
namespace world { namespace physics { namespace [[BIND_NAMESPACE]] debug {
	[[BIND_FUNC]] std::pair<int, bool> probe();
} } }`)
	require.Len(t, units, 2)

	a := units[0]
	assert.Equal(t, []Function{
		{Name: "version", Return: "num", Static: true},
		{Name: "log", Params: []Param{{Name: "msg", Type: "str"}}, Return: "void", Static: true},
	}, a.Globals.Functions)

	require.Len(t, a.Namespaces, 2)
	// Breadth-first: the root's child util follows the top-level world.
	util := a.Namespaces[1]
	assert.Equal(t, "util", util.Name)
	assert.Equal(t, []string{"util"}, util.Path)
	assert.False(t, util.Detached)

	world := a.Namespaces[0]
	assert.Equal(t, []Field{{Name: "gravity", Type: "opt<num>", Optional: true}}, world.Fields)
	require.Len(t, world.Children, 1)
	physics := world.Children[0]
	assert.Equal(t, []string{"world", "physics"}, physics.Path)
	assert.Equal(t, "fn(num)->void", physics.Functions[0].Params[0].Type)

	b := units[1]
	require.Len(t, b.Namespaces, 1)
	debug := b.Namespaces[0]
	assert.True(t, debug.Detached)
	assert.Equal(t, []string{"world", "physics", "debug"}, debug.Path)
	assert.Equal(t, "tuple<num,bool>", debug.Functions[0].Return)
}
