//go:build fldsdk && cgo

package engine

/*
#include <stddef.h>
*/
import "C"

//export fldGoOnNewResult
func fldGoOnNewResult(code C.int, phrase *C.char, json *C.char, numFaces C.size_t) {
	r := Result{Code: int(code), NumFaces: int(numFaces)}
	if phrase != nil {
		r.Phrase = C.GoString(phrase)
	}
	if json != nil {
		r.JSON = C.GoString(json)
	}
	deliveries.post(r)
}
