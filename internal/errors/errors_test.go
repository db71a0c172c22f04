package errors

import (
	stdErrors "errors"
	"os"
	"testing"

	"github.com/shoenig/test"
	"github.com/shoenig/test/must"
)

func TestWrap(t *testing.T) {
	err := Wrapf(os.ErrNotExist, "read config %s", "cfg.jsonnet")
	test.EqOp(t, "read config cfg.jsonnet: file does not exist", err.Error())
	test.True(t, stdErrors.Is(err, os.ErrNotExist))
}

func TestCombine(t *testing.T) {
	test.Nil(t, Combine())
	test.Nil(t, Combine(nil, nil))

	single := New("boom")
	test.EqOp(t, single, Combine(nil, single))

	err := Combine(New("first"), nil, Wrap(os.ErrProcessDone, "pid=1"))
	must.NotNil(t, err)
	test.EqOp(t, "first; pid=1: os: process already finished", err.Error())
	test.True(t, stdErrors.Is(err, os.ErrProcessDone))
}
