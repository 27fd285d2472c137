// Command qcachectl is a small inspection tool for serialized
// CompilationRequest records. It is ambient tooling, not part of the
// module's public contract: the real client is always an in-process
// caller of internal/request and internal/wire.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"smf/internal/configspace/static"
	"smf/internal/request"
	"smf/internal/source"
	"smf/internal/wire"
)

// defaultDescriptor is a minimal settings schema used when the caller
// doesn't point qcachectl at one of its own. It exists so `qcachectl key`
// and `qcachectl decode` work out of the box on simple requests.
const defaultDescriptor = `[settings]
search_path = "string"
statement_timeout = "int64"
jit = "bool"
`

type encodeFlags struct {
	sql           string
	roleName      string
	branchName    string
	schemaVersion string
	protoMajor    uint16
	protoMinor    uint16
	implicitLimit int64
	expectOne     bool
	outFile       string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "qcachectl",
		Short: "Inspect and build CompilationRequest wire records",
	}

	rootCmd.AddCommand(encodeCmd())
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(keyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func encodeCmd() *cobra.Command {
	flags := &encodeFlags{protoMajor: 3, implicitLimit: 0}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a Sql CompilationRequest and print its wire bytes as hex",
		RunE: func(_ *cobra.Command, _ []string) error {
			buf, _, err := buildAndSerialize(flags)
			if err != nil {
				return err
			}
			encoded := hex.EncodeToString(buf)
			if flags.outFile == "" {
				fmt.Println(encoded)
				return nil
			}
			return os.WriteFile(flags.outFile, []byte(encoded+"\n"), 0o644)
		},
	}
	addEncodeFlags(cmd, flags)
	return cmd
}

func keyCmd() *cobra.Command {
	flags := &encodeFlags{protoMajor: 3, implicitLimit: 0}
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Build a Sql CompilationRequest and print only its cache key",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, key, err := buildAndSerialize(flags)
			if err != nil {
				return err
			}
			fmt.Println(uuid.UUID(key).String())
			return nil
		},
	}
	addEncodeFlags(cmd, flags)
	return cmd
}

func decodeCmd() *cobra.Command {
	var queryText string
	cmd := &cobra.Command{
		Use:   "decode <hex-file>",
		Short: "Decode a serialized CompilationRequest and print its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			buf, err := hex.DecodeString(string(trimNewline(data)))
			if err != nil {
				return fmt.Errorf("decode hex: %w", err)
			}

			cs, err := static.New([]byte(defaultDescriptor), 3, 0)
			if err != nil {
				return err
			}
			req, err := wire.Deserialize(buf, queryText, cs)
			if err != nil {
				return err
			}
			key, err := req.CacheKey()
			if err != nil {
				return err
			}
			fmt.Printf("cache_key:       %s\n", uuid.UUID(key).String())
			fmt.Printf("protocol:        %d.%d\n", req.ProtocolVersion().Major, req.ProtocolVersion().Minor)
			fmt.Printf("input_language:  %s\n", req.InputLanguage().Name())
			fmt.Printf("output_format:   %s\n", req.OutputFormat())
			fmt.Printf("role_name:       %s\n", req.RoleName())
			fmt.Printf("branch_name:     %s\n", req.BranchName())
			fmt.Printf("text:            %s\n", req.Source().Text())
			return nil
		},
	}
	cmd.Flags().StringVar(&queryText, "text", "", "original query text, required to decode an Edgeql source")
	return cmd
}

func addEncodeFlags(cmd *cobra.Command, flags *encodeFlags) {
	cmd.Flags().StringVar(&flags.sql, "sql", "SELECT 1", "SQL query text")
	cmd.Flags().StringVar(&flags.roleName, "role", "admin", "role name")
	cmd.Flags().StringVar(&flags.branchName, "branch", "main", "branch name")
	cmd.Flags().StringVar(&flags.schemaVersion, "schema-version", "", "schema version uuid (random if empty)")
	cmd.Flags().Uint16Var(&flags.protoMajor, "proto-major", flags.protoMajor, "protocol version major")
	cmd.Flags().Uint16Var(&flags.protoMinor, "proto-minor", flags.protoMinor, "protocol version minor")
	cmd.Flags().Int64Var(&flags.implicitLimit, "implicit-limit", flags.implicitLimit, "implicit limit")
	cmd.Flags().BoolVar(&flags.expectOne, "expect-one", flags.expectOne, "expect exactly one result")
	cmd.Flags().StringVar(&flags.outFile, "out", "", "write hex output to this file instead of stdout")
}

func buildAndSerialize(flags *encodeFlags) ([]byte, [16]byte, error) {
	var schemaVersion uuid.UUID
	if flags.schemaVersion != "" {
		parsed, err := uuid.Parse(flags.schemaVersion)
		if err != nil {
			return nil, [16]byte{}, fmt.Errorf("invalid --schema-version: %w", err)
		}
		schemaVersion = parsed
	} else {
		schemaVersion = uuid.New()
	}

	cs, err := static.New([]byte(defaultDescriptor), flags.protoMajor, flags.protoMinor)
	if err != nil {
		return nil, [16]byte{}, err
	}

	req := request.New(request.Params{
		Source:           source.NewSQL(flags.sql),
		ProtocolVersion:  request.ProtocolVersion{Major: flags.protoMajor, Minor: flags.protoMinor},
		SchemaVersion:    schemaVersion,
		SchemaVersionSet: true,
		ConfigSpace:      cs,
		InputLanguage:    request.Sql,
		OutputFormat:     request.OutputBinary,
		InputFormat:      request.InputBinary,
		ExpectOne:        flags.expectOne,
		ImplicitLimit:    flags.implicitLimit,
		RoleName:         flags.roleName,
		BranchName:       flags.branchName,
	})

	buf, err := req.Serialize()
	if err != nil {
		return nil, [16]byte{}, err
	}
	key, err := req.CacheKey()
	if err != nil {
		return nil, [16]byte{}, err
	}
	return buf, key, nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
