package mongo

import (
	"context"
	stderrors "errors"

	"pagos-service/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// storeError classifies a driver failure as a connectivity or command error.
func storeError(op string, err error) error {
	if isConnectivity(err) {
		return errors.NewStoreConnectionError(op, err)
	}
	return errors.NewStoreCommandError(op, err)
}

func isConnectivity(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, mongo.ErrClientDisconnected)
}
