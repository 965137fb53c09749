package mixer

import "regexp"

// remoteLibrary is the vendor remote-control API surface the client needs.
// The real implementation loads the vendor DLL in-process; tests substitute
// a fake.
type remoteLibrary interface {
	Login() error
	Logout() error
	GetParameterFloat(name string) (float64, error)
	SetParameterFloat(name string, value float64) error
	GetParameterString(name string) (string, error)
	SetParameterString(name string, value string) error
}

// Parameter names follow the vendor's hierarchical scheme:
// Strip[0].Gain, Bus[1].Mute, Strip[2].Label, ...
var paramNameRe = regexp.MustCompile(`^\w+(\[\d+\])?(\.\w+)+$`)

func validParamName(name string) bool {
	return paramNameRe.MatchString(name)
}
