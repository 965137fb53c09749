//go:build windows

package mixer

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"

	"gamerig/internal/domain"
)

// vendorLibrary drives the vendor's remote-control DLL. The entry points
// follow the VoiceMeeter Remote API convention: integer return codes,
// negative on failure, with -3 meaning an unknown parameter name.
type vendorLibrary struct {
	dll       *windows.LazyDLL
	login     *windows.LazyProc
	logout    *windows.LazyProc
	getFloat  *windows.LazyProc
	setFloat  *windows.LazyProc
	getString *windows.LazyProc
	setString *windows.LazyProc
}

func loadLibrary(path string) (remoteLibrary, error) {
	if path == "" {
		return nil, fmt.Errorf("mixer remote library path not configured")
	}

	dll := windows.NewLazyDLL(path)
	if err := dll.Load(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return &vendorLibrary{
		dll:       dll,
		login:     dll.NewProc("VBVMR_Login"),
		logout:    dll.NewProc("VBVMR_Logout"),
		getFloat:  dll.NewProc("VBVMR_GetParameterFloat"),
		setFloat:  dll.NewProc("VBVMR_SetParameterFloat"),
		getString: dll.NewProc("VBVMR_GetParameterStringA"),
		setString: dll.NewProc("VBVMR_SetParameterStringA"),
	}, nil
}

func (l *vendorLibrary) Login() error {
	r, _, _ := l.login.Call()
	switch code := int32(r); {
	case code == 0:
		return nil
	case code == 1:
		// Logged in but the server application is not running yet
		return fmt.Errorf("mixer application not ready")
	default:
		return fmt.Errorf("login returned %d", code)
	}
}

func (l *vendorLibrary) Logout() error {
	r, _, _ := l.logout.Call()
	if code := int32(r); code != 0 {
		return fmt.Errorf("logout returned %d", code)
	}
	return nil
}

func (l *vendorLibrary) GetParameterFloat(name string) (float64, error) {
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}

	var out float32
	r, _, _ := l.getFloat.Call(uintptr(unsafe.Pointer(cname)), uintptr(unsafe.Pointer(&out)))
	if err := paramError(name, int32(r)); err != nil {
		return 0, err
	}
	return float64(out), nil
}

func (l *vendorLibrary) SetParameterFloat(name string, value float64) error {
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}

	r, _, _ := l.setFloat.Call(uintptr(unsafe.Pointer(cname)), uintptr(math.Float32bits(float32(value))))
	return paramError(name, int32(r))
}

func (l *vendorLibrary) GetParameterString(name string) (string, error) {
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}

	buf := make([]byte, 512)
	r, _, _ := l.getString.Call(uintptr(unsafe.Pointer(cname)), uintptr(unsafe.Pointer(&buf[0])))
	if err := paramError(name, int32(r)); err != nil {
		return "", err
	}
	return windows.ByteSliceToString(buf), nil
}

func (l *vendorLibrary) SetParameterString(name string, value string) error {
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}
	cvalue, err := windows.BytePtrFromString(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	}

	r, _, _ := l.setString.Call(uintptr(unsafe.Pointer(cname)), uintptr(unsafe.Pointer(cvalue)))
	return paramError(name, int32(r))
}

// paramError maps vendor return codes onto the error taxonomy
func paramError(name string, code int32) error {
	switch {
	case code >= 0:
		return nil
	case code == -3:
		return fmt.Errorf("%s: %w", name, domain.ErrInvalidParameter)
	default:
		return fmt.Errorf("%s: code %d: %w", name, code, domain.ErrRemote)
	}
}
