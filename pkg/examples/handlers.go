package examples

import (
	"context"
	"sync"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Resource values are guarded by the owning example's mutex. The helpers
// below build handlers that lock it around a getter or setter.

func readInt(mu sync.Locker, get func() int64) model.ReadFunc {
	return func(context.Context, model.URI) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		return wire.IntToBytes(get()), nil
	}
}

func readString(mu sync.Locker, get func() string) model.ReadFunc {
	return func(context.Context, model.URI) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		return []byte(get()), nil
	}
}

func readBool(mu sync.Locker, get func() bool) model.ReadFunc {
	return func(context.Context, model.URI) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if get() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	}
}

func writeInt(mu sync.Locker, set func(int64) error) model.WriteFunc {
	return func(_ context.Context, _ model.URI, value []byte) error {
		v, err := wire.BytesToInt(value)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		return set(v)
	}
}

func writeString(mu sync.Locker, set func(string) error) model.WriteFunc {
	return func(_ context.Context, _ model.URI, value []byte) error {
		mu.Lock()
		defer mu.Unlock()
		return set(string(value))
	}
}

func writeBool(mu sync.Locker, set func(bool)) model.WriteFunc {
	return func(_ context.Context, _ model.URI, value []byte) error {
		if len(value) != 1 {
			return wire.ErrInvalidLength
		}
		mu.Lock()
		defer mu.Unlock()
		set(value[0] != 0)
		return nil
	}
}
