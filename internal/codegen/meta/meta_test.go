package meta

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

func buildMeta(t *testing.T, files map[string]string, order ...string) *Metadata {
	t.Helper()
	sc := scanner.New(discard, scanner.Options{})
	var scanned []*ir.File
	for _, p := range order {
		scanned = append(scanned, sc.ScanFile(p, files[p]))
	}
	prog, err := linker.Link(discard, scanned, linker.Options{})
	require.NoError(t, err)
	return Build(prog)
}

func groups(md *Metadata) []string {
	var out []string
	for _, u := range md.Units {
		out = append(out, u.Group)
	}
	return out
}

func TestBuildUnits(t *testing.T) {
	md := buildMeta(t, map[string]string{
		"src/vec3.h": `struct [[BIND_TYPE]] Vec3 { [[BIND_VAR]] float x; };`,
		"src/world.h": `namespace [[BIND_NAMESPACE]] world {
	[[BIND_FUNC]] void tick();
	enum class [[BIND_ENUM]] Phase { Early, Late };
}`,
		"src/more.h": `namespace world { [[BIND_FUNC]] void pause(); enum [[BIND_ENUM]] Mode { A }; }
namespace hidden { [[BIND_FUNC]] void nope(); }`,
		"src/empty.h": `struct Plain { int x; };`,
	}, "src/more.h", "src/vec3.h", "src/world.h", "src/empty.h")

	require.Equal(t, []string{"More", "Vec3", "World"}, groups(md))

	more, ok := md.Unit("src/more.h")
	require.True(t, ok)
	assert.Empty(t, more.Namespaces)
	require.Len(t, more.Enums, 1)
	assert.Equal(t, "Mode", more.Enums[0].Name)

	world, ok := md.Unit("src/world.h")
	require.True(t, ok)
	require.Len(t, world.Namespaces, 1)
	assert.Len(t, world.Namespaces[0].Functions, 2)
	require.Len(t, world.Enums, 1)
	assert.Equal(t, "Phase", world.Enums[0].Name)

	vec, ok := md.Unit("src/vec3.h")
	require.True(t, ok)
	require.Len(t, vec.Classes, 1)
	assert.Equal(t, "Vec3", vec.Classes[0].Name)

	require.Len(t, md.Diagnostics, 1)
	assert.Equal(t, ir.DiagSkipped, md.Diagnostics[0].Kind)
	assert.Contains(t, md.Diagnostics[0].Message, "hidden")
}

func TestBuildSpecializationsStayWithTemplate(t *testing.T) {
	md := buildMeta(t, map[string]string{
		"range.h": `template <typename T> struct [[BIND_TYPE_TEMPLATE(IntRange)]] Range { [[BIND_VAR]] T lo; };`,
		"aliases.h": `using IntRange = Range<int>;`,
	}, "range.h", "aliases.h")

	require.Equal(t, []string{"Range"}, groups(md))
	u := md.Units[0]
	require.Len(t, u.Classes, 1)
	assert.Equal(t, "IntRange", u.Classes[0].Name)
	require.NotNil(t, u.Classes[0].Typedef)
	assert.Equal(t, "aliases.h", u.Classes[0].Typedef.Span.File)
}

func TestGroupNameCollisions(t *testing.T) {
	md := buildMeta(t, map[string]string{
		"a/util.h": `struct [[BIND_TYPE]] A {};`,
		"b/util.h": `struct [[BIND_TYPE]] B {};`,
	}, "b/util.h", "a/util.h")

	require.Equal(t, []string{"Util", "Util_2"}, groups(md))
	assert.Equal(t, "a/util.h", md.Units[0].Path)
}
