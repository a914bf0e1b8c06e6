package selector

import (
	"bytes"
	"slices"
	"sort"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// feeSelect returns transactions with the best fee while respecting the nonce
// for each sending address.
var feeSelect = func(m map[signature.Digest][]database.Tx, howMany int) []database.Tx {

	/*
		0x02: {Nonce: 2, Fee: 250}, {Nonce: 1, Fee: 150}
		0x04: {Nonce: 2, Fee: 200}, {Nonce: 1, Fee: 75}
		0x06: {Nonce: 2, Fee: 75},  {Nonce: 1, Fee: 100}
	*/

	// Walk the senders in address order so the same pool always produces
	// the same selection.
	senders := make([]signature.Digest, 0, len(m))
	for from := range m {
		senders = append(senders, from)
	}
	slices.SortFunc(senders, func(a, b signature.Digest) int {
		return bytes.Compare(a[:], b[:])
	})

	// Sort the transactions per sender by nonce.
	for _, from := range senders {
		if len(m[from]) > 1 {
			sort.Stable(byNonce(m[from]))
		}
	}

	/*
		0x02: {Nonce: 1, Fee: 150}, {Nonce: 2, Fee: 250}
		0x04: {Nonce: 1, Fee: 75},  {Nonce: 2, Fee: 200}
		0x06: {Nonce: 1, Fee: 100}, {Nonce: 2, Fee: 75}
	*/

	// Pick the first transaction in the slice for each sender. Each iteration
	// represents a new row of selections. Keep doing that until all the
	// transactions have been selected.
	var rows [][]database.Tx
	for {
		var row []database.Tx
		for _, from := range senders {
			if len(m[from]) > 0 {
				row = append(row, m[from][0])
				m[from] = m[from][1:]
			}
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	if howMany < 0 {
		var final []database.Tx
		for _, row := range rows {
			final = append(final, row...)
		}
		return final
	}

	// Sort each row by fee unless we will take all transactions from that row
	// anyway. Then try to select the number of requested transactions. Keep
	// pulling transactions from each row until the amount is fulfilled or
	// there are no more transactions.
	final := []database.Tx{}
done:
	for _, row := range rows {
		need := howMany - len(final)
		if len(row) > need {
			sort.Stable(byFee(row))
			final = append(final, row[:need]...)
			break done
		}
		final = append(final, row...)
	}

	/*
		0: 0x02: {Nonce: 1, Fee: 150}
		1: 0x04: {Nonce: 1, Fee: 75}
		2: 0x06: {Nonce: 1, Fee: 100}
		3: 0x02: {Nonce: 2, Fee: 250}
	*/

	return final
}
