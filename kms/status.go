package kms

import (
	"errors"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "bufcrypt.kms"

// The code alone is not trusted on the way back, grpc raises some of these
// codes itself (ResourceExhausted for oversized messages). The sentinel
// travels as an ErrorInfo reason.
var sentinels = []struct {
	err    error
	code   codes.Code
	reason string
}{
	{base.ErrNullPointer, codes.InvalidArgument, "NULL_POINTER"},
	{base.ErrInvalidEnum, codes.Unimplemented, "INVALID_ENUM"},
	{base.ErrInvalidSize, codes.OutOfRange, "INVALID_SIZE"},
	{base.ErrConstData, codes.FailedPrecondition, "CONST_DATA"},
	{base.ErrOverflow, codes.ResourceExhausted, "OVERFLOW"},
	{base.ErrInvalidState, codes.DataLoss, "INVALID_STATE"},
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, s := range sentinels {
		if !errors.Is(err, s.err) {
			continue
		}
		st, derr := status.New(s.code, err.Error()).WithDetails(&errdetails.ErrorInfo{
			Reason: s.reason,
			Domain: errorDomain,
		})
		if derr != nil {
			return status.Error(codes.Internal, err.Error())
		}
		return st.Err()
	}
	return status.Error(codes.Internal, err.Error())
}

type remoteError struct {
	msg      string
	sentinel error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }

func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		for _, s := range sentinels {
			if s.reason == info.GetReason() {
				return &remoteError{msg: st.Message(), sentinel: s.err}
			}
		}
	}
	return err
}
