//go:build !((linux || darwin) && cgo)

package native

import (
	"errors"
	"unsafe"

	"github.com/npillmayer/clisp/runtime"
)

// Available is true if this build can call native functions.
const Available = false

var errNoBridge = errors.New("native calls need cgo on linux or darwin")

func openLibrary(name string) (unsafe.Pointer, error) {
	return nil, errNoBridge
}

func closeLibrary(h unsafe.Pointer) {}

func processSymbol(symbol string) unsafe.Pointer {
	return nil
}

func librarySymbol(h unsafe.Pointer, symbol string) unsafe.Pointer {
	return nil
}

func callForeign(sig *Signature, args []runtime.Object, trap bool) (runtime.Object, error) {
	return nil, runtime.NewError(runtime.NativeCallFault, "native "+sig.Symbol,
		"native call bridge", errNoBridge.Error())
}
