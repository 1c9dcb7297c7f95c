package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorInfoOk(t *testing.T) {
	assert.True(t, Ok.IsOk())
	assert.Equal(t, "modbus: ok", Ok.Error())
}

func TestErrorInfoMessage(t *testing.T) {
	info := errInfo(SourceResponseParse, KindBadCRC)
	assert.False(t, info.IsOk())
	assert.Equal(t, "modbus: bad crc", info.Error())
}

func TestExceptionFromCodeRoundTrip(t *testing.T) {
	ex := ExceptionFromCode(ExIllegalDataAddress.Code())
	assert.Equal(t, ExIllegalDataAddress.Code(), ex.Code())
	assert.Equal(t, ExIllegalDataAddress.Error(), ex.Error())
}
