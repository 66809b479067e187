// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package state

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

const sampleState = `{
  "version": 4,
  "terraform_version": "1.9.0",
  "serial": 42,
  "lineage": "8a1b2c3d",
  "resources": [
    {
      "mode": "managed",
      "type": "aws_instance",
      "name": "web",
      "provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
      "instances": [
        {"schema_version": 1, "attributes": {"id": "i-123", "instance_type": "t3.micro"}}
      ]
    },
    {
      "module": "module.net",
      "mode": "data",
      "type": "aws_ami",
      "name": "base",
      "provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
      "instances": [
        {"schema_version": 0, "attributes": {"id": "ami-999"}}
      ]
    },
    {
      "mode": "managed",
      "type": "aws_subnet",
      "name": "private",
      "provider": "provider[\"registry.terraform.io/hashicorp/aws\"]",
      "instances": [
        {"index_key": 0, "attributes": {"id": "subnet-0"}},
        {"index_key": 1, "attributes": {"id": "subnet-1"}}
      ]
    }
  ]
}`

const samplePlan = `{
  "format_version": "1.2",
  "terraform_version": "1.9.0",
  "resource_changes": [
    {
      "address": "aws_instance.web",
      "mode": "managed",
      "type": "aws_instance",
      "name": "web",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {
        "actions": ["update"],
        "before": {"id": "i-123", "instance_type": "t3.micro"},
        "after": {"id": "i-123", "instance_type": "t3.small"}
      }
    },
    {
      "address": "aws_instance.gone",
      "mode": "managed",
      "type": "aws_instance",
      "name": "gone",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {
        "actions": ["delete"],
        "before": {"id": "i-999"},
        "after": null
      }
    },
    {
      "address": "aws_instance.same",
      "mode": "managed",
      "type": "aws_instance",
      "name": "same",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {
        "actions": ["no-op"],
        "before": {"id": "i-555"},
        "after": {"id": "i-555"}
      }
    }
  ]
}`

func TestParse_StateV4(t *testing.T) {
	doc, err := Parse([]byte(sampleState))
	require.NoError(t, err)

	assert.Equal(t, KindState, doc.Kind)
	assert.Equal(t, int64(42), doc.Serial)
	assert.Equal(t, "1.9.0", doc.TerraformVersion)
	assert.Len(t, doc.Resources, 4)

	web, ok := doc.Resources["aws_instance.web"]
	require.True(t, ok)
	assert.Equal(t, "t3.micro", web.Attributes["instance_type"])

	_, ok = doc.Resources["module.net.data.aws_ami.base"]
	assert.True(t, ok)

	sub0, ok := doc.Resources["aws_subnet.private[0]"]
	require.True(t, ok)
	assert.Equal(t, "subnet-0", sub0.Attributes["id"])
	_, ok = doc.Resources["aws_subnet.private[1]"]
	assert.True(t, ok)
}

func TestParse_Plan(t *testing.T) {
	doc, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, KindPlan, doc.Kind)
	// The planned destroy is absent; update and no-op are present.
	assert.Len(t, doc.Resources, 2)

	web, ok := doc.Resources["aws_instance.web"]
	require.True(t, ok)
	assert.Equal(t, "t3.small", web.Attributes["instance_type"])

	_, ok = doc.Resources["aws_instance.gone"]
	assert.False(t, ok)

	same, ok := doc.Resources["aws_instance.same"]
	require.True(t, ok)
	assert.Equal(t, "i-555", same.Attributes["id"])
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}

func TestParse_UnknownShape(t *testing.T) {
	_, err := Parse([]byte(`{"hello": "world"}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "neither resources nor resource_changes")
}

// encryptState builds an encrypted envelope the way DecryptState expects to
// find one.
func encryptState(t *testing.T, plaintext []byte, passphrase string) []byte {
	t.Helper()

	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	const iterations = 600000
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, 32, sha512.New)

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)

	metaJSON, err := json.Marshal(encryptionMeta{
		Salt:         base64.StdEncoding.EncodeToString(salt),
		Iterations:   iterations,
		HashFunction: "sha512",
		KeyLength:    32,
	})
	require.NoError(t, err)

	envelope := map[string]interface{}{
		"encryption_version": "v0",
		"meta": map[string]string{
			"key_provider.pbkdf2.passphrase": base64.StdEncoding.EncodeToString(metaJSON),
		},
		"encrypted_data": base64.StdEncoding.EncodeToString(sealed),
	}

	doc, err := json.Marshal(envelope)
	require.NoError(t, err)
	return doc
}

func TestDecryptState_RoundTrip(t *testing.T) {
	encrypted := encryptState(t, []byte(sampleState), "hunter2")

	assert.True(t, IsEncrypted(encrypted))
	assert.False(t, IsEncrypted([]byte(sampleState)))

	plain, err := DecryptState(encrypted, "hunter2")
	require.NoError(t, err)
	assert.JSONEq(t, sampleState, string(plain))

	doc, err := Parse(plain)
	require.NoError(t, err)
	assert.Equal(t, int64(42), doc.Serial)
}

func TestDecryptState_WrongPassphrase(t *testing.T) {
	encrypted := encryptState(t, []byte(sampleState), "hunter2")

	_, err := DecryptState(encrypted, "wrong")
	assert.Error(t, err)

	_, err = DecryptState(encrypted, "")
	assert.Error(t, err)
}

func TestDecryptState_MissingKeyProvider(t *testing.T) {
	doc := []byte(`{"meta": {}, "encrypted_data": "AAAA"}`)
	_, err := DecryptState(doc, "hunter2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key provider")
}

func TestResourceAddress(t *testing.T) {
	tests := []struct {
		module, mode, typ, name string
		want                    string
	}{
		{"", "managed", "aws_instance", "web", "aws_instance.web"},
		{"", "data", "aws_ami", "base", "data.aws_ami.base"},
		{"module.net", "managed", "aws_subnet", "a", "module.net.aws_subnet.a"},
		{"module.net", "data", "aws_ami", "b", "module.net.data.aws_ami.b"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, resourceAddress(tt.module, tt.mode, tt.typ, tt.name))
		})
	}
}

func ExampleParse() {
	doc, _ := Parse([]byte(`{"version":4,"serial":1,"resources":[]}`))
	fmt.Println(doc.Kind, doc.Serial)
	// Output: state 1
}
