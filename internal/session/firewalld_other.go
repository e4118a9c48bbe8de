//go:build !linux
// +build !linux

package session

import (
	"context"
	"errors"
)

func NewFirewalldStore(context.Context, string, string, bool) (Store, error) {
	return nil, errors.New("firewalld backend is only available on linux")
}
