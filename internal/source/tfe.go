// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-tfe"
)

// Sentinel errors for validation and unsupported cases. These enable callers
// to detect specific conditions via errors.Is while keeping messages
// consistent.
var (
	ErrInvalidClientType     = errors.New("not a Cloud or Enterprise TFE server")
	ErrNoCurrentStateVersion = errors.New("no current state version")
	ErrNoToken               = errors.New("no TFE token found")
)

// TFE fetches the current state version of a Terraform Cloud/Enterprise
// workspace.
type TFE struct {
	Host      string
	Org       string
	Workspace string
	TokenSpec string
}

// NewTFE parses a tfe://org/workspace spec.
func NewTFE(spec string, opts Options) (*TFE, error) {
	trimmed := strings.TrimPrefix(spec, "tfe://")
	org, ws, found := strings.Cut(trimmed, "/")
	if !found || org == "" || ws == "" {
		return nil, fmt.Errorf("invalid tfe spec %q, want tfe://org/workspace", spec)
	}

	host := opts.Host
	if host == "" {
		host = "app.terraform.io"
	}

	return &TFE{
		Host:      host,
		Org:       org,
		Workspace: ws,
		TokenSpec: opts.Token,
	}, nil
}

func (s *TFE) Fetch(ctx context.Context) ([]byte, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}

	client, err := tfe.NewClient(&tfe.Config{
		Address: "https://" + s.Host,
		Token:   token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TFE client: %w", err)
	}

	if !(client.IsCloud() || client.IsEnterprise()) {
		return nil, fmt.Errorf("failed to validate TFE client: %w", ErrInvalidClientType)
	}

	workspace, err := client.Workspaces.Read(ctx, s.Org, s.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace %s/%s: %w", s.Org, s.Workspace, err)
	}

	sv, err := client.StateVersions.ReadCurrent(ctx, workspace.ID)
	if err != nil {
		return nil, fmt.Errorf("%w for %s", ErrNoCurrentStateVersion, s)
	}
	log.Debugf("current state version %s serial %d", sv.ID, sv.Serial)

	doc, err := client.StateVersions.Download(ctx, sv.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download state version: %w", err)
	}

	return doc, nil
}

// Token resolves the API token. The precedence is:
//  1. The --token flag.
//  2. TFDRIFT_TOKEN / TFE_TOKEN.
//  3. TF_TOKEN_<host> with dots replaced by underscores.
//  4. Token in the TF credentials file.
func (s *TFE) Token() (string, error) {
	if s.TokenSpec != "" {
		return s.TokenSpec, nil
	}

	for _, env := range []string{"TFDRIFT_TOKEN", "TFE_TOKEN"} {
		if token := os.Getenv(env); token != "" {
			return token, nil
		}
	}

	hostname := strings.ReplaceAll(s.Host, ".", "_")
	if token := os.Getenv("TF_TOKEN_" + hostname); token != "" {
		return token, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	credsFile := home + "/.terraform.d/credentials.tfrc.json"
	data, err := os.ReadFile(credsFile)
	if err != nil {
		return "", fmt.Errorf("%w (checked flags, env, and %s)", ErrNoToken, credsFile)
	}

	var creds struct {
		Credentials map[string]struct {
			Token string `json:"token"`
		} `json:"credentials"`
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("failed to unmarshal credentials file: %w", err)
	}

	if cred, ok := creds.Credentials[s.Host]; ok && cred.Token != "" {
		return cred.Token, nil
	}

	return "", ErrNoToken
}

func (s *TFE) String() string {
	return fmt.Sprintf("tfe://%s/%s", s.Org, s.Workspace)
}
