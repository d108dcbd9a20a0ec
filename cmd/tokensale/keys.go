package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/bitfsorg/libtokensale-go/identity"
	"github.com/bitfsorg/libtokensale-go/store"
)

var (
	errNoSigner       = errors.New("one of --key or --envelope is required")
	errMethodMismatch = errors.New("envelope was signed for another method")
	errValueMismatch  = errors.New("envelope was signed for another value")
	errNoPassword     = errors.New("a key file password is required")
	errClockSkew      = errors.New("envelope block time is too far from the node clock")
)

func keygenCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "keygen",
		Short: "Generates an encrypted caller key and prints its address",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			out, err := flags.GetString(OutKey)
			if err != nil {
				return err
			}
			pw, err := password(flags)
			if err != nil {
				return err
			}
			if pw == "" {
				return errNoPassword
			}

			priv, err := identity.NewKey()
			if err != nil {
				return err
			}
			if err := writeKeyFile(out, priv, pw); err != nil {
				return err
			}
			addr, err := identity.AddressFromPublicKey(priv.PubKey(), a.cfg.Mainnet())
			if err != nil {
				return err
			}
			a.log.Info("key generated", zap.String("address", addr), zap.String("file", out))
			fmt.Fprintln(c.OutOrStdout(), addr)
			return nil
		},
	}
	flags := c.Flags()
	flags.String(OutKey, "", "Key file to create (required)")
	flags.String(PasswordKey, "", "Key file password (default $"+passwordEnv+")")
	_ = c.MarkFlagRequired(OutKey)
	return c
}

func signCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "sign",
		Short: "Signs a call envelope for later submission with --envelope",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			flags := c.Flags()
			method, err := flags.GetString(MethodKey)
			if err != nil {
				return err
			}
			if !slices.Contains(signedMethods, method) {
				return fmt.Errorf("unknown method %q", method)
			}
			raw, err := flags.GetString(ValueKey)
			if err != nil {
				return err
			}
			value, err := uint256.FromDecimal(raw)
			if err != nil {
				return fmt.Errorf("--%s %q: %w", ValueKey, raw, err)
			}
			out, err := flags.GetString(OutKey)
			if err != nil {
				return err
			}
			at, err := now(flags)
			if err != nil {
				return err
			}
			env, err := a.signWithKeyFile(flags, method, value.Dec(), at)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(c.OutOrStdout(), string(data))
				return nil
			}
			return os.WriteFile(out, append(data, '\n'), 0600)
		},
	}
	flags := c.Flags()
	flags.String(MethodKey, "", "Contract method: "+strings.Join(signedMethods, ", ")+" (required)")
	flags.String(ValueKey, "0", "Attached value in base currency units")
	flags.String(OutKey, "", "Envelope file to write (default stdout)")
	flags.String(NowKey, "", "Block time to authorize, RFC 3339 (default now)")
	flags.String(KeyFileKey, "", "Encrypted key file of the caller (required)")
	flags.String(PasswordKey, "", "Key file password (default $"+passwordEnv+")")
	_ = c.MarkFlagRequired(MethodKey)
	_ = c.MarkFlagRequired(KeyFileKey)
	return c
}

const (
	methodNew                      = "new"
	methodDepositForSale           = "deposit_for_sale"
	methodDistributeToShareholders = "distribute_to_shareholders"
	methodDistributeToBuyers       = "distribute_to_buyers"
)

var signedMethods = []string{
	methodNew,
	methodDepositForSale,
	methodDistributeToShareholders,
	methodDistributeToBuyers,
}

// maxClockSkew bounds the distance between the block time signed into an
// envelope and the clock of the node applying it.
const maxClockSkew = 5 * time.Minute

// signedCall is an authenticated invocation.
type signedCall struct {
	Caller string
	At     time.Time // block time authorized by the signature
	Nonce  store.Nonce
}

// authenticate verifies the invoker of method. The envelope is read from
// --envelope or signed on the spot with --key at the node clock. Its
// signature, method and value must match the command, and its signed block
// time must lie within maxClockSkew of the node clock (--now or the wall
// clock). The returned block time is the signed one.
func (a *app) authenticate(flags *pflag.FlagSet, method, value string) (signedCall, error) {
	clock, err := now(flags)
	if err != nil {
		return signedCall{}, err
	}
	envPath, err := flags.GetString(EnvelopeKey)
	if err != nil {
		return signedCall{}, err
	}

	var env *identity.Envelope
	if envPath != "" {
		data, err := os.ReadFile(envPath)
		if err != nil {
			return signedCall{}, fmt.Errorf("read envelope: %w", err)
		}
		env = new(identity.Envelope)
		if err := json.Unmarshal(data, env); err != nil {
			return signedCall{}, fmt.Errorf("decode envelope %s: %w", envPath, err)
		}
	} else {
		if env, err = a.signWithKeyFile(flags, method, value, clock); err != nil {
			return signedCall{}, err
		}
	}

	if env.Method != method {
		return signedCall{}, fmt.Errorf("%w: %q", errMethodMismatch, env.Method)
	}
	if env.Value != value {
		return signedCall{}, fmt.Errorf("%w: %q", errValueMismatch, env.Value)
	}
	caller, err := env.Verify(a.cfg.Mainnet())
	if err != nil {
		return signedCall{}, err
	}
	at := env.SignedAt()
	if skew := clock.Sub(at); skew > maxClockSkew || skew < -maxClockSkew {
		return signedCall{}, fmt.Errorf("%w: signed for %s, node clock %s",
			errClockSkew, at.Format(time.RFC3339), clock.Format(time.RFC3339))
	}
	a.log.Debug("caller authenticated",
		zap.String("caller", caller),
		zap.String("method", method),
		zap.Uint64("nonce", env.Nonce),
		zap.Time("at", at),
	)
	return signedCall{Caller: caller, At: at, Nonce: store.Nonce{Caller: caller, Value: env.Nonce}}, nil
}

// checkNonce fails early for an envelope that was already applied. The
// store repeats the check when the new state is committed.
func checkNonce(s *store.Store, call signedCall) error {
	used, err := s.NonceUsed(call.Nonce)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s nonce %d", store.ErrNonceReused, call.Caller, call.Nonce.Value)
	}
	return nil
}

func (a *app) signWithKeyFile(flags *pflag.FlagSet, method, value string, at time.Time) (*identity.Envelope, error) {
	keyPath, err := flags.GetString(KeyFileKey)
	if err != nil {
		return nil, err
	}
	if keyPath == "" {
		return nil, errNoSigner
	}
	pw, err := password(flags)
	if err != nil {
		return nil, err
	}
	priv, err := readKeyFile(keyPath, pw)
	if err != nil {
		return nil, err
	}
	return identity.SignEnvelope(priv, method, value, uint64(time.Now().UnixNano()), at, a.cfg.Mainnet())
}

// writeKeyFile stores priv encrypted under password as hex. Existing files
// are never overwritten.
func writeKeyFile(path string, priv *ec.PrivateKey, password string) error {
	enc, err := identity.EncryptKey(priv, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	if _, err := f.WriteString(hex.EncodeToString(enc) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	return f.Close()
}

func readKeyFile(path, password string) (*ec.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	enc, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", identity.ErrInvalidKey, path, err)
	}
	return identity.DecryptKey(enc, password)
}
