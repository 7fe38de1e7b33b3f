package capacity

import "stegocodec/stegerr"

func insufficientCapacityf(b Breakdown) error {
	return stegerr.InsufficientCapacityf(
		"capacity: cover file has %d bytes, %d required (%d data blocks, %d byte skip, %d password bytes)",
		b.CoverFileSize, b.TotalBytesRequired, b.NumberOfDataBlocks, b.TotalByteSkip, b.PasswordSize,
	)
}
