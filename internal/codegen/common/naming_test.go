package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaming(t *testing.T) {
	assert.Equal(t, "Vec3", GroupName("include/math/vec3.h"))
	assert.Equal(t, "PlayerController", GroupName("PlayerController.hpp"))
	assert.Equal(t, "My_types", GroupName("my-types.h"))
	assert.Equal(t, "Num2d", GroupName("2d.h"))
	assert.Equal(t, "", FirstUpper(""))
	assert.Equal(t, "Über", FirstUpper("über"))
	assert.Equal(t, "ns_a_b", "ns_"+SanitizeIdentifier("a.b"))
}

func TestGetVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v2.0.1-rc1"
	v, err := GetVersion()
	assert.NoError(t, err)
	assert.Equal(t, "2.0.1-rc1", v)

	Version = "nightly"
	_, err = GetVersion()
	assert.ErrorContains(t, err, "invalid version format: nightly")
}

func TestFileHeader(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = ""
	assert.Equal(t, "// Code generated by luaexpose 0.0.1-dev. DO NOT EDIT.\n", FileHeader("//"))
	Version = "v1.2.3"
	assert.Equal(t, "-- Code generated by luaexpose 1.2.3. DO NOT EDIT.\n", FileHeader("--"))
}
