package linker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/luaexpose/internal/codegen/ir"
	"github.com/Alia5/luaexpose/internal/codegen/scanner"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// source is one in-memory header.
type source struct {
	path, text string
}

func link(t *testing.T, opts Options, srcs ...source) *Program {
	t.Helper()
	sc := scanner.New(discard, scanner.Options{})
	files := make([]*ir.File, 0, len(srcs))
	for _, s := range srcs {
		files = append(files, sc.ScanFile(s.path, s.text))
	}
	prog, err := Link(discard, files, opts)
	require.NoError(t, err)
	return prog
}

func linkKinds(p *Program) []ir.DiagKind {
	var out []ir.DiagKind
	for _, d := range p.Diagnostics {
		out = append(out, d.Kind)
	}
	return out
}

func TestNamespaceMergeAcrossFiles(t *testing.T) {
	prog := link(t, Options{},
		source{"a.h", `namespace [[BIND_NAMESPACE]] Foo { [[BIND_FUNC]] void a(); }`},
		source{"b.h", `namespace [[BIND_NAMESPACE]] Foo { [[BIND_FUNC]] void b(); namespace inner { [[BIND_FUNC]] void c(); } }`},
	)
	require.Len(t, prog.Namespaces, 1)
	foo := prog.Namespaces[0]
	assert.Equal(t, "Foo", foo.Name)
	assert.Len(t, foo.Attributes, 1)
	require.Len(t, foo.Functions, 2)
	assert.Equal(t, "a", foo.Functions[0].Name)
	assert.Equal(t, "b", foo.Functions[1].Name)
	for _, fn := range foo.Functions {
		assert.Same(t, foo, fn.Namespace)
	}

	home, ok := prog.Home(foo)
	require.True(t, ok)
	assert.Equal(t, "a.h", home)

	require.Len(t, foo.Namespaces, 1)
	inner := foo.Namespaces[0]
	assert.Same(t, foo, inner.Parent)
	assert.Equal(t, "Foo::inner", inner.QualifiedName())
	home, ok = prog.Home(inner)
	require.True(t, ok)
	assert.Equal(t, "b.h", home)
}

func TestNamespaceHomeSkipsUnmarkedCopies(t *testing.T) {
	prog := link(t, Options{},
		source{"plain.h", `namespace Foo { [[BIND_FUNC]] void a(); }`},
		source{"marked.h", `namespace [[BIND_NAMESPACE]] Foo { [[BIND_FUNC]] void b(); }`},
	)
	require.Len(t, prog.Namespaces, 1)
	home, ok := prog.Home(prog.Namespaces[0])
	require.True(t, ok)
	assert.Equal(t, "marked.h", home)
}

func TestStubsResolveBasesAcrossFiles(t *testing.T) {
	prog := link(t, Options{},
		source{"player.h", `namespace game { struct [[BIND_TYPE]] Player : public Entity, public std::enable_shared_from_this<Player> { }; }`},
		source{"entity.h", `namespace game { struct [[BIND_TYPE]] Entity { [[BIND_FUNC]] virtual void tick(); }; }`},
	)
	require.Len(t, prog.Classes, 2)
	player, ok := prog.LookupClass("Player", "game")
	require.True(t, ok)
	entity, ok := prog.LookupClass("game::Entity", "")
	require.True(t, ok)

	assert.True(t, entity.Populated)
	require.Len(t, entity.Functions, 1)
	assert.Same(t, entity, entity.Functions[0].Class)

	require.Len(t, player.BaseRefs, 2)
	assert.Same(t, entity, player.BaseRefs[0])
	ext := player.BaseRefs[1]
	assert.True(t, ext.Opaque)
	assert.Equal(t, "enable_shared_from_this", ext.Name)
	assert.Equal(t, "std", ext.Namespace)
	assert.Contains(t, linkKinds(prog), ir.DiagUnresolvedBase)

	game := prog.Namespaces[0]
	require.Len(t, game.Classes, 2)
	assert.Same(t, player, game.Classes[0])
	assert.Same(t, entity, game.Classes[1])
	assert.Same(t, game, entity.Owner)
	assert.Same(t, player, prog.Files[0].Namespaces[0].Classes[0])
}

func TestDuplicateClassNotRegistered(t *testing.T) {
	prog := link(t, Options{},
		source{"one.h", `struct [[BIND_TYPE]] Dup { [[BIND_VAR]] int a; };`},
		source{"two.h", `struct [[BIND_TYPE]] Dup { [[BIND_VAR]] int b; };`},
	)
	require.Len(t, prog.Classes, 1)
	dup := prog.Classes[0]
	require.Len(t, dup.Fields, 1)
	assert.Equal(t, "a", dup.Fields[0].Name)
	assert.Equal(t, "one.h", dup.Span.File)
	assert.NotSame(t, dup, prog.Files[1].Global.Classes[0])
	assert.Equal(t, []ir.DiagKind{ir.DiagDuplicateClass}, linkKinds(prog))
}

func TestTemplateSpecialization(t *testing.T) {
	prog := link(t, Options{}, source{"range.h", `
template <typename T>
struct [[BIND_TYPE_TEMPLATE(IntRange, Missing)]] Range {
	[[BIND_CTOR]] Range(T lo, T hi);
	[[BIND_FUNC]] T clamp(T v) const;
	[[BIND_FUNC]] bool overlaps(const Range<T>& other) const;
	[[BIND_VAR]] T lo;
};
using IntRange = Range<std::int32_t>;
`})
	require.Len(t, prog.Specializations, 1)
	spec := prog.Specializations[0]
	tmpl, ok := prog.LookupClass("Range", "")
	require.True(t, ok)

	assert.Equal(t, "IntRange", spec.Name)
	assert.Same(t, tmpl, spec.SpecializedFrom)
	assert.Equal(t, "IntRange", spec.Typedef.Name)
	assert.True(t, spec.Attributes.Has(ir.MarkerType))
	assert.False(t, spec.Attributes.Has(ir.MarkerTypeTemplate))
	assert.Equal(t, "range.h", spec.Span.File)

	require.Len(t, spec.Functions, 3)
	ctor, clamp, overlaps := spec.Functions[0], spec.Functions[1], spec.Functions[2]
	assert.True(t, ctor.Constructor)
	assert.Equal(t, "IntRange", ctor.Name)
	assert.Equal(t, []string{"int32_t", "int32_t"}, []string{ctor.Params[0].Type, ctor.Params[1].Type})
	assert.Equal(t, "int32_t", clamp.ReturnType)
	assert.Equal(t, ir.TypePrimitive, clamp.Return.Kind)
	assert.Same(t, spec, clamp.Class)
	assert.Equal(t, "const IntRange&", overlaps.Params[0].Type)
	assert.Same(t, spec, overlaps.Params[0].Ref.Class)
	require.Len(t, spec.Fields, 1)
	assert.Equal(t, "int32_t", spec.Fields[0].Type)

	// the template keeps its generic spelling
	assert.Equal(t, "T", tmpl.Functions[1].ReturnType)
	assert.Equal(t, ir.TypeTemplateParam, tmpl.Functions[1].Return.Kind)
	assert.Contains(t, linkKinds(prog), ir.DiagUnresolvedTypedef)
}

func TestResolveTypes(t *testing.T) {
	prog := link(t, Options{}, source{"gfx.h", `
namespace gfx {
enum class [[BIND_ENUM]] Mode { A };
using Handle = Texture;
struct [[BIND_TYPE]] Texture {
	[[BIND_FUNC]] Mode mode() const;
	[[BIND_FUNC]] std::vector<Handle> siblings();
	[[BIND_FUNC]] Unknown mystery();
	[[BIND_FUNC]] void reset();
};
}
`})
	tex, ok := prog.LookupClass("Texture", "gfx")
	require.True(t, ok)
	require.Len(t, tex.Functions, 4)

	mode := tex.Functions[0].Return
	assert.Equal(t, ir.TypeEnum, mode.Kind)
	assert.Equal(t, "gfx::Mode", mode.Enum.QualifiedName())

	sib := tex.Functions[1].Return
	assert.Equal(t, ir.TypeLibrary, sib.Kind)
	require.Len(t, sib.Args, 1)
	assert.Equal(t, ir.TypeTypedef, sib.Args[0].Kind)
	assert.Equal(t, ir.TypeClass, sib.Args[0].Final().Kind)
	assert.Same(t, tex, sib.Args[0].Final().Class)

	assert.Equal(t, ir.TypeUnresolved, tex.Functions[2].Return.Kind)
	assert.Equal(t, ir.TypeVoid, tex.Functions[3].Return.Kind)

	ref := prog.ResolveType("const gfx::Texture&", "", nil)
	assert.Equal(t, ir.TypeClass, ref.Kind)
	assert.True(t, ref.Desc.Const)
	assert.True(t, ref.Desc.Reference)
}

func TestResolveTypeDepthCeiling(t *testing.T) {
	prog := link(t, Options{MaxTypeDepth: 4}, source{"cycle.h", `
using A = B;
using B = A;
struct [[BIND_TYPE]] S { [[BIND_VAR]] A a; };
`})
	s, ok := prog.LookupClass("S", "")
	require.True(t, ok)
	require.Len(t, s.Fields, 1)
	ref := s.Fields[0].Ref
	assert.Equal(t, ir.TypeTypedef, ref.Kind)
	assert.Equal(t, ir.TypeOpaque, ref.Final().Kind)
}

func TestStrictFailsOnErrorDiagnostics(t *testing.T) {
	sc := scanner.New(discard, scanner.Options{})
	files := []*ir.File{sc.ScanFile("broken.h", "namespace a { [[BIND_FUNC]] void f();\n")}

	prog, err := Link(discard, files, Options{})
	require.NoError(t, err)
	assert.True(t, ir.HasErrors(prog.AllDiagnostics()))

	_, err = Link(discard, files, Options{Strict: true})
	assert.ErrorIs(t, err, ErrStrict)
}
