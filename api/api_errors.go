package api

import (
	"errors"
	"reflect"

	"github.com/filecoin-project/go-jsonrpc"
)

const (
	EInsufficientAllowance = iota + jsonrpc.FirstUserCode
	EProviderUnreachable
	EProviderMisconfigured
	ETransferFailed
	ERootTransactionFailed
	ENotConnected
	EChainSwitchFailed
	EMappingSubmissionFailed
	EMappingConfirmationFailed
)

var (
	RPCErrors = jsonrpc.NewErrors()

	// ErrInsufficientAllowance signals that the preflight quote found the
	// wallet's allowance short. User-actionable; never retried automatically.
	ErrInsufficientAllowance = &errInsufficientAllowance{}
	// ErrProviderUnreachable signals a connectivity or health-check failure
	// against the selected storage provider.
	ErrProviderUnreachable = &errProviderUnreachable{}
	// ErrProviderMisconfigured signals required provider metadata missing
	// after normalization.
	ErrProviderMisconfigured = &errProviderMisconfigured{}
	// ErrTransferFailed signals the artifact transfer failed. A fresh session
	// re-uploads from scratch.
	ErrTransferFailed = &errTransferFailed{}
	// ErrRootTransactionFailed signals the root-addition transaction failed or
	// went unconfirmed. Non-fatal when the content identifier is already known.
	ErrRootTransactionFailed = &errRootTransactionFailed{}
	// ErrNotConnected signals that no signing account is attached.
	ErrNotConnected = &errNotConnected{}
	// ErrChainSwitchFailed signals the underlying network switch failed.
	ErrChainSwitchFailed = &errChainSwitchFailed{}
	// ErrMappingSubmissionFailed signals the mapping transaction was rejected.
	// Resets the attempt guard so the mapping can be retried.
	ErrMappingSubmissionFailed = &errMappingSubmissionFailed{}
	// ErrMappingConfirmationFailed signals the mapping transaction was
	// submitted but its confirmation was not observed within the bounded wait.
	ErrMappingConfirmationFailed = &errMappingConfirmationFailed{}

	_ error = (*errInsufficientAllowance)(nil)
	_ error = (*errProviderUnreachable)(nil)
	_ error = (*errProviderMisconfigured)(nil)
	_ error = (*errTransferFailed)(nil)
	_ error = (*errRootTransactionFailed)(nil)
	_ error = (*errNotConnected)(nil)
	_ error = (*errChainSwitchFailed)(nil)
	_ error = (*errMappingSubmissionFailed)(nil)
	_ error = (*errMappingConfirmationFailed)(nil)
)

func init() {
	RPCErrors.Register(EInsufficientAllowance, new(*errInsufficientAllowance))
	RPCErrors.Register(EProviderUnreachable, new(*errProviderUnreachable))
	RPCErrors.Register(EProviderMisconfigured, new(*errProviderMisconfigured))
	RPCErrors.Register(ETransferFailed, new(*errTransferFailed))
	RPCErrors.Register(ERootTransactionFailed, new(*errRootTransactionFailed))
	RPCErrors.Register(ENotConnected, new(*errNotConnected))
	RPCErrors.Register(EChainSwitchFailed, new(*errChainSwitchFailed))
	RPCErrors.Register(EMappingSubmissionFailed, new(*errMappingSubmissionFailed))
	RPCErrors.Register(EMappingConfirmationFailed, new(*errMappingConfirmationFailed))
}

// ErrorIsIn reports whether err matches any of the given taxonomy errors.
func ErrorIsIn(err error, errorTypes []error) bool {
	for _, etype := range errorTypes {
		tmp := reflect.New(reflect.PointerTo(reflect.ValueOf(etype).Elem().Type())).Interface()
		if errors.As(err, tmp) {
			return true
		}
	}
	return false
}

type errInsufficientAllowance struct{}

func (errInsufficientAllowance) Error() string {
	return "storage allowance is insufficient, increase the rate or lockup allowance and retry"
}

type errProviderUnreachable struct{}

func (errProviderUnreachable) Error() string {
	return "storage provider is unreachable, retry the upload"
}

type errProviderMisconfigured struct{}

func (errProviderMisconfigured) Error() string {
	return "storage provider record is missing required fields"
}

type errTransferFailed struct{}

func (errTransferFailed) Error() string {
	return "artifact transfer failed, start a new upload to retry"
}

type errRootTransactionFailed struct{}

func (errRootTransactionFailed) Error() string {
	return "root addition transaction failed or went unconfirmed"
}

type errNotConnected struct{}

func (errNotConnected) Error() string {
	return "no signing account attached, reconnect the wallet"
}

type errChainSwitchFailed struct{}

func (errChainSwitchFailed) Error() string {
	return "network switch failed, switch networks and retry"
}

type errMappingSubmissionFailed struct{}

func (errMappingSubmissionFailed) Error() string {
	return "mapping transaction submission failed"
}

type errMappingConfirmationFailed struct{}

func (errMappingConfirmationFailed) Error() string {
	return "mapping transaction confirmation was not observed"
}
