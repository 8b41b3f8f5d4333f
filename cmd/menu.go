package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/nxsteg/internal/core"
	"github.com/illarion/nxsteg/internal/crypto"
	"github.com/illarion/nxsteg/internal/storage"
)

// menu is the interactive front end. Paths are read line by line from in;
// passwords go through readSecret so they are not echoed on a terminal.
type menu struct {
	engine     *core.Engine
	in         *bufio.Reader
	out        io.Writer
	readSecret func(prompt string) ([]byte, error)
}

// Menu runs the interactive embed/extract loop until the user exits or
// stdin is closed
func Menu(ctx context.Context) {
	m := &menu{
		engine: core.New(),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if core.IsTerminal() {
		m.readSecret = core.PromptPassword
	} else {
		m.readSecret = m.readLineSecret
	}

	if err := m.run(ctx); err != nil {
		HandleError(err)
	}
}

func (m *menu) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(m.out, "NXSTEG")
		fmt.Fprintln(m.out, "------------------------------")
		fmt.Fprintln(m.out, "1. Embed data")
		fmt.Fprintln(m.out, "2. Extract data")
		fmt.Fprintln(m.out, "3. Exit")

		choice, err := m.prompt("Select: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = m.embed(ctx)
		case "2":
			err = m.extract(ctx)
		case "3":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice")
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			printError(err)
		}
		fmt.Fprintln(m.out)
	}
}

func (m *menu) embed(ctx context.Context) error {
	carrierPath, err := m.prompt("Carrier image path: ")
	if err != nil {
		return err
	}
	payloadPath, err := m.prompt("File to embed: ")
	if err != nil {
		return err
	}
	outPath, err := m.prompt("Output image path (.png or .bmp): ")
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	password, err := m.password()
	if err != nil {
		return err
	}
	defer password.Clear()

	report, err := m.engine.EmbedFile(ctx, carrierPath, payload, outPath, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "✓ Embedded successfully → %s\n", outPath)
	recordHistory(storage.Record{
		Op:           storage.OpEmbed,
		Input:        carrierPath,
		Output:       outPath,
		Width:        report.Width,
		Height:       report.Height,
		CarrierBytes: report.CarrierBytes,
		FrameBytes:   report.FrameBytes,
		PayloadBytes: report.PayloadBytes,
		PayloadHash:  report.PayloadHash,
		Encrypted:    report.Encrypted,
	})
	return nil
}

func (m *menu) extract(ctx context.Context) error {
	stegoPath, err := m.prompt("Stego image path: ")
	if err != nil {
		return err
	}
	outPath, err := m.prompt("Output file path: ")
	if err != nil {
		return err
	}

	password, err := m.password()
	if err != nil {
		return err
	}
	defer password.Clear()

	payload, err := m.engine.ExtractFile(ctx, stegoPath, password)
	if err != nil {
		return err
	}

	if err := writePayload(outPath, payload); err != nil {
		return err
	}

	fmt.Fprintf(m.out, "✓ Extracted successfully → %s (%s)\n", outPath, formatSize(int64(len(payload))))
	recordHistory(storage.Record{
		Op:           storage.OpExtract,
		Input:        stegoPath,
		Output:       outPath,
		PayloadBytes: len(payload),
		PayloadHash:  core.HashPayload(payload),
		Encrypted:    password.Present(),
	})
	return nil
}

// password reads an optional password; a blank answer disables encryption
func (m *menu) password() (crypto.Password, error) {
	secret, err := m.secret("Password (blank for none): ")
	if err != nil {
		return crypto.NoPassword(), err
	}
	if len(secret) == 0 {
		return crypto.NoPassword(), nil
	}
	return crypto.NewPassword(secret), nil
}

func (m *menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// secret reads a password through readSecret. Input already buffered
// from stdin was typed ahead of the prompt and would be skipped by a
// direct terminal read, so it is consumed from the buffer instead.
func (m *menu) secret(label string) ([]byte, error) {
	if m.in.Buffered() > 0 {
		return m.readLineSecret(label)
	}
	return m.readSecret(label)
}

func (m *menu) readLineSecret(label string) ([]byte, error) {
	line, err := m.prompt(label)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}
