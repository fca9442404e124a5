package rules

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/scanner"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func build(t *testing.T, texts ...string) *linker.Program {
	t.Helper()
	sc := scanner.New(discard, scanner.Options{})
	var files []*ir.File
	for i, text := range texts {
		files = append(files, sc.ScanFile(string(rune('a'+i))+".h", text))
	}
	prog, err := linker.Link(discard, files, linker.Options{})
	require.NoError(t, err)
	return prog
}

func classNamed(t *testing.T, prog *linker.Program, name string) *ir.Class {
	t.Helper()
	for _, c := range prog.Classes {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("class %s not found", name)
	return nil
}

func methodNames(ms []Method) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Name)
	}
	return out
}

func TestClassRules(t *testing.T) {
	type testCase struct {
		name string
		run  func(t *testing.T)
	}

	tests := []testCase{
		{
			name: "overload group emits each function once",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] Calc {
	[[BIND_FUNC]] int Add(int a, int b);
	[[BIND_FUNC]] float Add(float a, float b);
	[[BIND_FUNC]] double Add(double a, double b, double c);
	[[BIND_FUNC]] float Length() const;
};`)
				cls := BuildClass(prog, classNamed(t, prog, "Calc"))
				require.Equal(t, []string{"Add", "Length"}, methodNames(cls.Methods))
				assert.True(t, cls.Methods[0].Overloaded)
				assert.Len(t, cls.Methods[0].Candidates, 3)
				assert.False(t, cls.Methods[1].Overloaded)

				seen := map[*ir.Function]int{}
				for _, m := range cls.Methods {
					for _, f := range m.Candidates {
						seen[f]++
					}
				}
				for f, n := range seen {
					assert.Equal(t, 1, n, f.Name)
				}
			},
		},
		{
			name: "explicit overload marker and renames",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] Vec {
	[[BIND_FUNC_OVERLOAD]] Vec Scale(float s) const;
	[[BIND_FUNC($name=len)]] float Length() const;
	[[BIND_FUNC(use_static)]] static Vec Zero();
	[[BIND_META_FUNC(addition)]] Vec operator+(const Vec& o) const;
};`)
				cls := BuildClass(prog, classNamed(t, prog, "Vec"))
				require.Equal(t, []string{"Scale", "len", "Zero", "addition"}, methodNames(cls.Methods))
				assert.True(t, cls.Methods[0].Overloaded)
				assert.False(t, cls.Methods[1].Overloaded)
				assert.True(t, cls.Methods[2].UseStatic)
				assert.True(t, cls.Methods[2].Static)
				assert.Equal(t, "addition", cls.Methods[3].Meta)
			},
		},
		{
			name: "static and member candidates sharing a name need static_cast",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] Clock {
	[[BIND_FUNC]] float Now() const;
	[[BIND_FUNC]] static float Now(int zone);
};`)
				cls := BuildClass(prog, classNamed(t, prog, "Clock"))
				require.Len(t, cls.Methods, 1)
				assert.True(t, cls.Methods[0].UseStatic)
				assert.False(t, cls.Methods[0].Static)
			},
		},
		{
			name: "properties",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] Car {
	[[BIND_FUNC]] float get_Speed() const;
	[[BIND_FUNC]] void set_Speed(float v);
	[[BIND_FUNC]] int get_Wheels() const;
	[[BIND_FUNC]] void set_Color(int c);
};`)
				cls := BuildClass(prog, classNamed(t, prog, "Car"))
				require.Len(t, cls.Properties, 2)
				assert.Equal(t, "Speed", cls.Properties[0].Name)
				assert.False(t, cls.Properties[0].ReadOnly())
				assert.Equal(t, "Wheels", cls.Properties[1].Name)
				assert.True(t, cls.Properties[1].ReadOnly())
				assert.Equal(t, []string{"set_Color"}, methodNames(cls.Methods))
			},
		},
		{
			name: "constructor forms",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] A { [[BIND_CTOR]] A(int x); [[BIND_CTOR]] A(); };
struct [[BIND_TYPE]] B { [[BIND_CTOR]] static B Make(int x); };
struct [[BIND_TYPE_NO_CTOR]] C { [[BIND_CTOR]] C(); };
struct [[BIND_TYPE]] D { [[BIND_FUNC]] void f(); };`)
				a := ConstructorsOf(classNamed(t, prog, "A"))
				assert.Equal(t, CtorList, a.Kind)
				assert.Len(t, a.Candidates, 2)
				b := ConstructorsOf(classNamed(t, prog, "B"))
				assert.Equal(t, CtorFactories, b.Kind)
				assert.Equal(t, CtorNone, ConstructorsOf(classNamed(t, prog, "C")).Kind)
				assert.Equal(t, CtorOmitted, ConstructorsOf(classNamed(t, prog, "D")).Kind)
			},
		},
		{
			name: "fields",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] P {
	[[BIND_VAR]] float x;
	[[BIND_VAR_READONLY]] int id;
	[[BIND_VAR_OPTIONAL]] float* weight;
	[[BIND_VAR]] static constexpr int kMax = 4;
};`)
				cls := BuildClass(prog, classNamed(t, prog, "P"))
				require.Len(t, cls.Fields, 4)
				assert.False(t, cls.Fields[0].Readonly)
				assert.True(t, cls.Fields[1].Readonly)
				assert.True(t, cls.Fields[2].Optional)
				assert.True(t, cls.Fields[3].Readonly)
				assert.True(t, cls.Fields[3].Static)
			},
		},
		{
			name: "forwarding adapter",
			run: func(t *testing.T) {
				prog := build(t, `
struct [[BIND_TYPE]] W {
	[[BIND_FORWARD_FUNC(arg=int, arg=float, return=bool, name=apply, caller=wrap|args|)]] bool Apply(Packed p);
	[[BIND_FORWARD_FUNC(arg=int)]] void Poke(Packed p);
};`)
				cls := BuildClass(prog, classNamed(t, prog, "W"))
				require.Len(t, cls.Forwards, 2)
				fa := cls.Forwards[0]
				assert.Equal(t, "apply", fa.Name)
				assert.Equal(t, []string{"int", "float"}, fa.Args)
				assert.Equal(t, "bool", fa.Return)
				assert.True(t, fa.Returns())
				assert.Equal(t, "wrap(arg0, arg1)", fa.Call)
				assert.Equal(t, "Poke", cls.Forwards[1].Name)
				assert.Equal(t, "arg0", cls.Forwards[1].Call)
				assert.False(t, cls.Forwards[1].Returns())
				assert.Empty(t, cls.Methods)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestFlattenBases(t *testing.T) {
	prog := build(t, `
struct [[BIND_TYPE]] Entity {
	[[BIND_FUNC]] virtual void Update();
	[[BIND_FUNC]] virtual void Draw();
	[[BIND_FUNC]] void Plain();
	[[BIND_VAR]] int id;
};`, `
struct [[BIND_TYPE]] Actor : public Entity {
	[[BIND_VAR]] float hp;
};
struct [[BIND_TYPE]] Player : public Actor, public std::enable_shared_from_this<Player> {
	[[BIND_FUNC]] void Update() override;
};`)
	player := classNamed(t, prog, "Player")
	bases := FlattenBases(player)
	require.Len(t, bases, 2)
	assert.Equal(t, "Actor", bases[0].Name)
	assert.Equal(t, "Entity", bases[1].Name)

	cls := BuildClass(prog, player)
	assert.Equal(t, []string{"Draw", "Update"}, methodNames(cls.Methods))
	assert.Same(t, player, cls.Methods[1].First().Class)

	var fields []string
	for _, fb := range cls.Fields {
		fields = append(fields, fb.Name)
		assert.True(t, fb.Inherited)
	}
	assert.Equal(t, []string{"hp", "id"}, fields)
}

func TestFlattenBasesCycle(t *testing.T) {
	a := &ir.Class{Name: "A", Populated: true, Attributes: ir.Attributes{ir.NewAttribute(ir.MarkerType, "BIND_TYPE", "")}}
	b := &ir.Class{Name: "B", Populated: true, Attributes: a.Attributes}
	a.BaseRefs = []*ir.Class{b}
	b.BaseRefs = []*ir.Class{a}
	bases := FlattenBases(a)
	require.Len(t, bases, 1)
	assert.Same(t, b, bases[0])
}

func TestTemplateInstances(t *testing.T) {
	prog := build(t, `
struct Component {};
struct [[BIND_TYPE]] HealthComponent : Component { [[BIND_VAR]] int hp; };
struct [[BIND_TYPE]] ArmorComponent : Component { [[BIND_VAR]] int ac; };
struct [[BIND_TYPE]] Entity {
	[[BIND_FUNC_TEMPLATE(Component, ...)]] template <typename T> T* Get();
	[[BIND_FUNC_TEMPLATE(int, float)]] template <typename T> void Put(T v);
};`)
	cls := BuildClass(prog, classNamed(t, prog, "Entity"))
	require.Len(t, cls.Templates, 3)
	assert.Equal(t, "GetHealth", cls.Templates[0].Name)
	assert.Equal(t, []string{"HealthComponent"}, cls.Templates[0].Args)
	assert.Equal(t, "GetArmor", cls.Templates[1].Name)
	assert.Equal(t, "Put", cls.Templates[2].Name)
	assert.Equal(t, []string{"int", "float"}, cls.Templates[2].Args)
}

func TestBuildNamespace(t *testing.T) {
	prog := build(t, `
namespace [[BIND_NAMESPACE]] math {
	[[BIND_FUNC]] float clamp(float v, float lo, float hi);
	[[BIND_FUNC]] int clamp(int v, int lo, int hi);
	[[BIND_FUNC]] float lerp(float a, float b, float t);
	[[BIND_VAR]] float pi = 3.14f;
	enum class [[BIND_ENUM]] Axis { X, Y, Z };
}`)
	require.Len(t, prog.Namespaces, 1)
	ns := BuildNamespace(prog, prog.Namespaces[0])
	assert.Equal(t, "math", ns.Name)
	assert.Equal(t, []string{"clamp", "lerp"}, methodNames(ns.Functions))
	assert.True(t, ns.Functions[0].Overloaded)
	require.Len(t, ns.Fields, 1)
	assert.Equal(t, "pi", ns.Fields[0].Name)
	require.Len(t, ns.Enums, 1)
	assert.False(t, ns.Empty())
}
