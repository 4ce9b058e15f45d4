package errors

import "fmt"

// Well-known HRESULT values returned by the hosting entry points.
const (
	StatusFail                 int32 = -2147467259 // 0x80004005
	StatusNotImpl              int32 = -2147467263 // 0x80004001
	StatusInvalidArg           int32 = -2147024809 // 0x80070057
	StatusOutOfMemory          int32 = -2147024882 // 0x8007000E
	StatusFileNotFound         int32 = -2147024894 // 0x80070002
	StatusBadImageFormat       int32 = -2147024885 // 0x8007000B
	StatusTypeLoad             int32 = -2146233054 // 0x80131522
	StatusMissingMethod        int32 = -2146233069 // 0x80131513
	StatusFileLoad             int32 = -2146232799 // 0x80131621
	StatusHostInvalidOperation int32 = -2146234334 // 0x80131022
)

var statusNames = map[int32]string{
	StatusFail:                 "E_FAIL",
	StatusNotImpl:              "E_NOTIMPL",
	StatusInvalidArg:           "E_INVALIDARG",
	StatusOutOfMemory:          "E_OUTOFMEMORY",
	StatusFileNotFound:         "COR_E_FILENOTFOUND",
	StatusBadImageFormat:       "COR_E_BADIMAGEFORMAT",
	StatusTypeLoad:             "COR_E_TYPELOAD",
	StatusMissingMethod:        "COR_E_MISSINGMETHOD",
	StatusFileLoad:             "COR_E_FILELOAD",
	StatusHostInvalidOperation: "HOST_E_INVALIDOPERATION",
}

// StatusText renders a native status as "status 0xXXXXXXXX (NAME)".
func StatusText(code int32) string {
	hex := fmt.Sprintf("status 0x%08X", uint32(code))
	if name, ok := statusNames[code]; ok {
		return hex + " (" + name + ")"
	}
	return hex
}
