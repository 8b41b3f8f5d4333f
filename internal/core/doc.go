// Package core provides the nxsteg embed and extract pipeline.
//
// Embed:
//   - Seal the payload (AES-256-CBC when a password is given)
//   - Wrap it in an NXSTEG frame (magic + length + data)
//   - Check carrier capacity, then write the frame into channel LSBs
//   - Rebuild the image and save it losslessly
//
// Extract runs the same stages in reverse. Each call is independent; an
// Engine holds only configuration and can be shared.
//
// The package also reads passwords from the terminal or environment and
// compares extracted payloads with local files for the verify command.
package core
