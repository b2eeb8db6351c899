//go:build windows

package pagesize

import (
	"syscall"
	"unsafe"
)

// systemInfo mirrors the SYSTEM_INFO structure filled by GetSystemInfo.
// See https://learn.microsoft.com/windows/win32/api/sysinfoapi/ns-sysinfoapi-system_info
type systemInfo struct {
	// First member of the DUMMYUNIONNAME union.
	OemID                     uint32
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       *uint32
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

var (
	modkernel32       = syscall.NewLazyDLL("kernel32.dll")
	procGetSystemInfo = modkernel32.NewProc("GetSystemInfo")
)

type platformQuerier struct{}

func (platformQuerier) PageSize() (int, error) {
	if err := procGetSystemInfo.Find(); err != nil {
		return 0, err
	}
	var si systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	return int(si.PageSize), nil
}
