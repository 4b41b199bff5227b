//go:build (linux || darwin) && cgo

package native

/*
#cgo linux LDFLAGS: -ldl
#cgo pkg-config: libffi
#define _GNU_SOURCE
#include <dlfcn.h>
#include <ffi.h>
#include <setjmp.h>
#include <signal.h>
#include <stdlib.h>
#include <string.h>

static void *cl_dlopen(const char *name) {
	return dlopen(name, RTLD_NOW | RTLD_LOCAL);
}

static const char *cl_dlerror(void) {
	const char *msg = dlerror();
	return msg ? msg : "unknown dlopen error";
}

static void *cl_dlsym(void *handle, const char *sym) {
	dlerror();
	return dlsym(handle, sym);
}

static void *cl_dlsym_default(const char *sym) {
	dlerror();
	return dlsym(RTLD_DEFAULT, sym);
}

static int cl_dlclose(void *handle) {
	return dlclose(handle);
}

// Type tags must match native.Type.
static ffi_type *cl_ffi_type(int tag) {
	switch (tag) {
	case 0: return &ffi_type_sint;
	case 1: return &ffi_type_double;
	case 2: return &ffi_type_schar;
	case 3: return &ffi_type_pointer;
	}
	return &ffi_type_void;
}

static sigjmp_buf cl_fault_jmp;
static volatile sig_atomic_t cl_fault_armed = 0;

static void cl_fault_handler(int sig) {
	if (cl_fault_armed) {
		cl_fault_armed = 0;
		siglongjmp(cl_fault_jmp, sig);
	}
	signal(sig, SIG_DFL);
	raise(sig);
}

// cl_call calls fn through libffi. Returns 0 on success, -1 if the call
// interface could not be prepared, or the number of the signal caught
// during the call.
static int cl_call(void *fn, int ret, int nargs, int *tags, void **avalue,
		void *rvalue, int trap) {
	ffi_cif cif;
	ffi_type *atypes[nargs > 0 ? nargs : 1];
	for (int i = 0; i < nargs; i++) {
		atypes[i] = cl_ffi_type(tags[i]);
	}
	if (ffi_prep_cif(&cif, FFI_DEFAULT_ABI, (unsigned) nargs,
			cl_ffi_type(ret), atypes) != FFI_OK) {
		return -1;
	}
	struct sigaction sa, oldsegv, oldbus;
	if (trap) {
		memset(&sa, 0, sizeof sa);
		sa.sa_handler = cl_fault_handler;
		sigemptyset(&sa.sa_mask);
		sa.sa_flags = SA_ONSTACK | SA_NODEFER;
		sigaction(SIGSEGV, &sa, &oldsegv);
		sigaction(SIGBUS, &sa, &oldbus);
		int sig = sigsetjmp(cl_fault_jmp, 1);
		if (sig != 0) {
			sigaction(SIGSEGV, &oldsegv, NULL);
			sigaction(SIGBUS, &oldbus, NULL);
			return sig;
		}
		cl_fault_armed = 1;
	}
	ffi_call(&cif, FFI_FN(fn), rvalue, avalue);
	if (trap) {
		cl_fault_armed = 0;
		sigaction(SIGSEGV, &oldsegv, NULL);
		sigaction(SIGBUS, &oldbus, NULL);
	}
	return 0;
}
*/
import "C"

import (
	"errors"
	"syscall"
	"unsafe"

	"github.com/npillmayer/clisp/runtime"
)

// slotSize is the size of a C-heap slot holding one argument or the return
// value. It covers every type of a signature, and ffi_arg.
const slotSize = 16

func openLibrary(name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	h := C.cl_dlopen(cname)
	if h == nil {
		return nil, errors.New(C.GoString(C.cl_dlerror()))
	}
	return h, nil
}

func closeLibrary(h unsafe.Pointer) {
	C.cl_dlclose(h)
}

func processSymbol(symbol string) unsafe.Pointer {
	csym := C.CString(symbol)
	defer C.free(unsafe.Pointer(csym))
	return C.cl_dlsym_default(csym)
}

func librarySymbol(h unsafe.Pointer, symbol string) unsafe.Pointer {
	csym := C.CString(symbol)
	defer C.free(unsafe.Pointer(csym))
	return C.cl_dlsym(h, csym)
}

// cAlloc allocates zeroed memory on the C heap and registers it for
// release at the end of the call.
func cAlloc(cleanup *runtime.Stack, size C.size_t) unsafe.Pointer {
	p := C.calloc(1, size)
	if p == nil {
		runtime.AbortAllocation("native call", uintptr(size))
	}
	cleanup.Push(p)
	return p
}

func freeAll(cleanup *runtime.Stack) {
	for !cleanup.Empty() {
		p, _ := cleanup.Pop()
		C.free(p.(unsafe.Pointer))
	}
}

// callForeign marshals args into C memory, calls the function and converts
// the result. Arguments have already been checked against the signature.
func callForeign(sig *Signature, args []runtime.Object, trap bool) (runtime.Object, error) {
	cleanup := runtime.NewStack()
	defer freeAll(cleanup)
	n := len(args)
	var tags, avalue, slots unsafe.Pointer
	if n > 0 {
		tags = cAlloc(cleanup, C.size_t(n)*C.size_t(unsafe.Sizeof(C.int(0))))
		avalue = cAlloc(cleanup, C.size_t(n)*C.size_t(unsafe.Sizeof(uintptr(0))))
		slots = cAlloc(cleanup, C.size_t(n)*slotSize)
	}
	tagv := unsafe.Slice((*C.int)(tags), n)
	avalues := unsafe.Slice((*unsafe.Pointer)(avalue), n)
	for i, t := range sig.Args {
		slot := unsafe.Add(slots, i*slotSize)
		tagv[i] = C.int(t)
		avalues[i] = slot
		switch t {
		case Integer:
			v, _ := runtime.IntValue(args[i])
			*(*C.int)(slot) = C.int(v)
		case Double:
			v, _ := runtime.DoubleValue(args[i])
			*(*C.double)(slot) = C.double(v)
		case Char:
			v, _ := runtime.CharValue(args[i])
			*(*C.schar)(slot) = C.schar(int8(v))
		case String:
			v, _ := runtime.StringValue(args[i])
			cs := C.CString(v)
			cleanup.Push(unsafe.Pointer(cs))
			*(**C.char)(slot) = cs
		}
	}
	rvalue := cAlloc(cleanup, slotSize)
	var guard C.int
	if trap {
		guard = 1
	}
	tracer().Debugf("calling %s", sig)
	rc := C.cl_call(sig.fn, C.int(sig.Return), C.int(n), (*C.int)(tags),
		(*unsafe.Pointer)(avalue), rvalue, guard)
	switch {
	case rc < 0:
		return nil, runtime.NewError(runtime.NativeCallFault, "native "+sig.Symbol,
			"valid call interface", "ffi_prep_cif failed")
	case rc > 0:
		sname := syscall.Signal(rc).String()
		tracer().Errorf("native call %s faulted: %s", sig.Symbol, sname)
		return nil, runtime.Errorf(runtime.NativeCallFault, "native "+sig.Symbol,
			"clean return", "caught signal %d (%s)", int(rc), sname)
	}
	return convertResult(sig.Return, rvalue), nil
}

func convertResult(t Type, rvalue unsafe.Pointer) runtime.Object {
	switch t {
	case Integer:
		v := *(*C.ffi_sarg)(rvalue)
		return runtime.MakeInt(int64(int32(v)))
	case Double:
		return runtime.MakeDouble(float64(*(*C.double)(rvalue)))
	case Char:
		v := *(*C.ffi_sarg)(rvalue)
		return runtime.MakeChar(byte(int8(v)))
	case String:
		p := *(**C.char)(rvalue)
		if p == nil {
			return runtime.MakeUnspecified()
		}
		return runtime.MakeString(C.GoString(p))
	}
	return runtime.MakeUnspecified()
}

// Available is true if this build can call native functions.
const Available = true
