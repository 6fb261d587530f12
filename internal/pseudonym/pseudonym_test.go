package pseudonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Hash("hello"))
	assert.Equal(t, Hash("alice"), Hash("alice"))
	assert.NotEqual(t, Hash("alice"), Hash("Alice"))
	assert.Len(t, Hash("Zoë 🌻"), 64)
}
