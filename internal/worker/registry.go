package worker

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/profaxno/siproad-products-api/internal/replication"
)

// Handler applies one replication message. Returning an error schedules a
// retry unless the error is permanent.
type Handler func(ctx context.Context, msg replication.Message) error

// Registry dispatches by message process.
type Registry map[replication.Process]Handler

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the job goes straight to the DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// decode unmarshals the message payload; a payload that does not parse
// will never parse, so the error is permanent.
func decode(msg replication.Message, v any) error {
	if err := json.Unmarshal([]byte(msg.JSONData), v); err != nil {
		return Permanent(pkgerrors.Wrapf(err, "decode %s payload", msg.Process))
	}
	return nil
}
