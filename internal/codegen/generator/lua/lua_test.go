package lua

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/linker"
	"github.com/Alia5/luaexpose/internal/codegen/meta"
	"github.com/Alia5/luaexpose/internal/codegen/render"
	"github.com/Alia5/luaexpose/internal/codegen/rules"
	"github.com/Alia5/luaexpose/internal/codegen/scanner"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func buildMeta(t *testing.T, path, text string) *meta.Metadata {
	t.Helper()
	sc := scanner.New(discard, scanner.Options{})
	prog, err := linker.Link(discard, []*ir.File{sc.ScanFile(path, text)}, linker.Options{})
	require.NoError(t, err)
	return meta.Build(prog)
}

func renderUnit(t *testing.T, md *meta.Metadata, opts Options) string {
	t.Helper()
	require.Len(t, md.Units, 1)
	jobs, err := Unit(md, md.Units[0], opts)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	out, err := render.New(nil).Render(jobs[0].Template, jobs[0].Data)
	require.NoError(t, err)
	return string(out)
}

func TestVec3Registration(t *testing.T) {
	md := buildMeta(t, "include/vec3.h", `
struct [[BIND_TYPE]] Vec3 {
	[[BIND_CTOR]] Vec3(float x, float y, float z);
	[[BIND_FUNC]] float Length() const;
	[[BIND_VAR]] float x;
};`)
	out := renderUnit(t, md, Options{IncludeRoots: []string{"include"}})

	assert.Contains(t, out, `#include "vec3.h"`)
	assert.Contains(t, out, "void lua_expose_usertypes_Vec3(sol::state_view& state)")
	assert.Contains(t, out, `auto ut_Vec3 = state.new_usertype<Vec3>("Vec3", sol::constructors<Vec3(float, float, float)>());`)
	assert.Contains(t, out, `ut_Vec3["Length"] = &Vec3::Length;`)
	assert.Contains(t, out, `ut_Vec3["x"] = &Vec3::x;`)
	assert.Less(t, strings.Index(out, `ut_Vec3["Length"]`), strings.Index(out, `ut_Vec3["x"]`))
	assert.Equal(t, "LuaUsertypesVec3.cpp", FileName(md.Units[0]))
}

func TestClassSnippets(t *testing.T) {
	type testCase struct {
		name, src string
		want     []string
		notWant  []string
	}

	tests := []testCase{
		{
			name: "overloads resolve by signature",
			src: `struct [[BIND_TYPE]] Calc {
	[[BIND_FUNC]] int Add(int a, int b) const;
	[[BIND_FUNC]] float Add(float a, float b) const;
};`,
			want: []string{
				`ut_Calc["Add"] = sol::overload(sol::resolve<int(int, int) const>(&Calc::Add), sol::resolve<float(float, float) const>(&Calc::Add));`,
				`state.new_usertype<Calc>("Calc");`,
			},
		},
		{
			name: "use_static and meta functions",
			src: `namespace game { struct [[BIND_TYPE_NO_CTOR]] Vec {
	[[BIND_FUNC(use_static)]] static Vec Zero();
	[[BIND_META_FUNC(addition)]] Vec operator+(const Vec& o) const;
}; }`,
			want: []string{
				`state.new_usertype<game::Vec>("Vec", sol::no_constructor)`,
				`ut_Vec["Zero"] = static_cast<game::Vec (*)()>(&game::Vec::Zero);`,
				`ut_Vec[sol::meta_function::addition] = &game::Vec::operator+;`,
				"using namespace game;",
			},
		},
		{
			name: "properties forwards and readonly fields",
			src: `struct [[BIND_TYPE]] Car {
	[[BIND_FUNC]] float get_Speed() const;
	[[BIND_FUNC]] void set_Speed(float v);
	[[BIND_FUNC]] int get_Wheels() const;
	[[BIND_FORWARD_FUNC(arg=int, return=bool, name=honk)]] bool Honk(Packed p);
	[[BIND_VAR_READONLY]] int id;
	[[BIND_VAR]] static int count;
};`,
			want: []string{
				`ut_Car["Speed"] = sol::property(&Car::get_Speed, &Car::set_Speed);`,
				`ut_Car["Wheels"] = sol::property(&Car::get_Wheels);`,
				`ut_Car["honk"] = [](Car& o, int arg0) -> bool { return o.Honk(arg0); };`,
				`ut_Car["id"] = sol::readonly(&Car::id);`,
				`ut_Car["count"] = sol::var(std::ref(Car::count));`,
			},
			notWant: []string{`"get_Speed"`, `"set_Speed"`},
		},
		{
			name: "factories and bases",
			src: `struct [[BIND_TYPE]] Entity {
	[[BIND_FUNC]] virtual void Update();
	[[BIND_VAR]] int id;
};
struct [[BIND_TYPE]] Player : public Entity {
	[[BIND_CTOR]] static std::shared_ptr<Player> Create(int id);
};`,
			want: []string{
				`state.new_usertype<Player>("Player", sol::factories(&Player::Create), sol::base_classes, sol::bases<Entity>())`,
				`ut_Player["Update"] = &Player::Update;`,
				`ut_Player["id"] = &Player::id;`,
			},
		},
		{
			name: "template instances",
			src: `struct [[BIND_TYPE]] Box {
	[[BIND_FUNC_TEMPLATE(int)]] template <typename T> T Get();
	[[BIND_FUNC_TEMPLATE(int, float)]] template <typename T> void Put(T v);
};`,
			want: []string{
				`ut_Box["Get"] = &Box::Get<int>;`,
				`ut_Box["Put"] = sol::overload(&Box::Put<int>, &Box::Put<float>);`,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := renderUnit(t, buildMeta(t, "unit.h", tc.src), Options{})
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tc.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestNamespaceSnippets(t *testing.T) {
	md := buildMeta(t, "world.h", `
namespace [[BIND_NAMESPACE]] bindings {
	[[BIND_FUNC]] void log(const std::string& msg);
}
namespace [[BIND_NAMESPACE]] world {
	[[BIND_FUNC]] float clamp(float v, float lo, float hi);
	[[BIND_FUNC]] int clamp(int v, int lo, int hi);
	[[BIND_VAR]] float gravity;
	[[BIND_VAR]] Settings settings;
	namespace [[BIND_NAMESPACE]] physics {
		[[BIND_FUNC]] void step();
	}
}
[[BIND_FUNC]] int version();`)
	out := renderUnit(t, md, Options{})

	for _, w := range []string{
		`state.set_function("version", &::version);`,
		`state.set_function("log", &bindings::log);`,
		`auto ns_world = state["world"].get_or_create<sol::table>();`,
		`ns_world.set_function("clamp", sol::overload(sol::resolve<float(float, float, float)>(&world::clamp), sol::resolve<int(int, int, int)>(&world::clamp)));`,
		`ns_world.set("gravity", world::gravity);`,
		`ns_world.set("settings", &world::settings);`,
		`auto ns_world_physics = ns_world["physics"].get_or_create<sol::table>();`,
		`ns_world_physics.set_function("step", &world::physics::step);`,
	} {
		assert.Contains(t, out, w)
	}
	assert.Equal(t, 1, strings.Count(out, "auto ns_world ="))
}

func TestEnumSnippet(t *testing.T) {
	small := &ir.Enum{Name: "Phase", Values: []ir.EnumValue{{Name: "Early"}, {Name: "Late"}}}
	assert.Equal(t, "state.new_enum(\"Phase\",\n    \"Early\", Phase::Early,\n    \"Late\", Phase::Late);", enumSnippet(small))

	big := &ir.Enum{Name: "Key", Namespace: &ir.Namespace{Name: "input"}}
	for i := 0; i <= enumInlineLimit; i++ {
		big.Values = append(big.Values, ir.EnumValue{Name: fmt.Sprintf("K%d", i)})
	}
	s := enumSnippet(big)
	assert.True(t, strings.HasPrefix(s, "state.new_enum<input::Key>(\"Key\", {\n    { \"K0\", input::Key::K0 },"))
	assert.True(t, strings.HasSuffix(s, "{ \"K30\", input::Key::K30 }\n});"))
}

func TestMethodExprSingleOverloadMarker(t *testing.T) {
	f := &ir.Function{Name: "Scale", ReturnType: "Vec", Params: []ir.Parameter{{Name: "s", Type: "float"}}, Const: true}
	m := rules.Method{Name: "Scale", Candidates: []*ir.Function{f}, Overloaded: true}
	assert.Equal(t, "sol::resolve<Vec(float) const>(&Vec::Scale)", methodExpr(m, "Vec", true))
}

func TestAggregate(t *testing.T) {
	md := buildMeta(t, "vec3.h", `struct [[BIND_TYPE]] Vec3 {};`)
	jobs, err := Aggregate(md, Options{Namespace: "game", External: []string{"register_extra"}})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	r := render.New(nil)
	src, err := r.Render(jobs[0].Template, jobs[0].Data)
	require.NoError(t, err)
	assert.Contains(t, string(src), "namespace game")
	assert.Contains(t, string(src), "        lua_expose_usertypes_Vec3(state);\n        register_extra(state);\n")
	assert.Equal(t, AggregateSource, jobs[0].File)
	assert.Equal(t, AggregateHeader, jobs[1].File)
}

func TestIncludePath(t *testing.T) {
	assert.Equal(t, "math/vec3.h", IncludePath("src/include/math/vec3.h", []string{"src/include/"}))
	assert.Equal(t, "other/x.h", IncludePath("other/x.h", []string{"src/include"}))
}
