package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"neoquiz/internal/mockapi/service"
)

func TestAnnounceSeed(t *testing.T) {
	var out bytes.Buffer
	announceSeed(&out, 3)
	assert.Equal(t, "mockapi: seeded 3 teachers, sign in with password \""+service.DefaultSeedPassword+"\"\n", out.String())

	out.Reset()
	announceSeed(&out, 0)
	assert.Empty(t, out.String())
}
