package common

import "fmt"

// FileHeader is the generated-file banner, written with the target's line
// comment token. It must not vary between runs of the same version.
func FileHeader(comment string) string {
	v, err := GetVersion()
	if err != nil {
		v = Version
	}
	return fmt.Sprintf("%s Code generated by luaexpose %s. DO NOT EDIT.\n", comment, v)
}
