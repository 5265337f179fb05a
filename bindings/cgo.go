package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"

	"github.com/nickyhof/DemoDB"
)

//export demodb_open
func demodb_open() C.int {
	return C.int(handles.add(DemoDB.OpenDemo()))
}

//export demodb_open_seed
func demodb_open_seed(path *C.char) C.int {
	handle, err := openSeed(C.GoString(path))
	if err != nil {
		return -1
	}
	return C.int(handle)
}

//export demodb_close
func demodb_close(handle C.int) {
	handles.remove(int(handle))
}

//export demodb_execute
func demodb_execute(handle C.int, query *C.char, database *C.char) *C.char {
	return C.CString(executeJSON(int(handle), C.GoString(query), C.GoString(database)))
}

//export demodb_reset
func demodb_reset(handle C.int) C.int {
	h, ok := handles.get(int(handle))
	if !ok {
		return -1
	}
	h.instance.Reset()
	return 0
}

//export demodb_snapshot
func demodb_snapshot(handle C.int) *C.char {
	return C.CString(snapshotJSON(int(handle)))
}

//export demodb_free
func demodb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}
