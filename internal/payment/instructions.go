package payment

import "strings"

// Cashier-facing settlement steps per method code, shown on the
// terminal once the basket is frozen.
var instructionMap = map[string][]string{
	CodeCash: {
		"Sebutkan total {{amount}} kepada pelanggan",
		"Terima uang tunai dan hitung di depan pelanggan",
		"Berikan kembalian bila ada",
		"Serahkan struk sebagai bukti pembayaran",
	},

	CodeQRIS: {
		"Tunjukkan kode QR pada layar pelanggan",
		"Minta pelanggan memindai dan membayar {{amount}}",
		"Tunggu notifikasi pembayaran masuk",
		"Serahkan struk sebagai bukti pembayaran",
	},

	CodeDebit: {
		"Masukkan nominal {{amount}} pada mesin EDC",
		"Minta pelanggan menempelkan atau memasukkan kartu",
		"Minta pelanggan memasukkan PIN",
		"Simpan salinan struk EDC bersama struk kasir",
	},
}

// Instructions returns the settlement steps for a method code, with a
// generic fallback for codes added after this build shipped.
func Instructions(code string) []string {
	if steps, ok := instructionMap[code]; ok {
		return steps
	}

	return []string{
		"Ikuti instruksi pembayaran pada perangkat pembayaran",
	}
}

type InstructionVars map[string]string

// InjectVariables fills {{placeholder}} slots in the steps. Unknown
// placeholders are left as-is.
func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}
