package cups

import (
	"context"

	"paperjet/internal/native"
)

// DestinationInfo is the capability set of one destination. It is queried
// fresh every time and owned by the caller.
type DestinationInfo struct {
	api native.Spooler
	ptr native.Ptr
}

// CopyDestinationInfo asks the spooler for d's capabilities.
func CopyDestinationInfo(ctx context.Context, d *Destination) (*DestinationInfo, bool) {
	p := d.api.CopyDestInfo(ctx, d.native())
	if p.IsNull() {
		return nil, false
	}
	return &DestinationInfo{api: d.api, ptr: p}, true
}

// Close frees the capability set. Further calls do nothing.
func (i *DestinationInfo) Close() error {
	if i == nil || i.ptr.IsNull() {
		return nil
	}
	i.api.FreeDestInfo(i.ptr)
	i.ptr = native.Null
	return nil
}

func (i *DestinationInfo) handle() native.Ptr {
	if i == nil {
		return native.Null
	}
	return i.ptr
}
