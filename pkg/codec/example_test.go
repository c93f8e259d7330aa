package codec_test

import (
	"fmt"
	"log"

	"github.com/ssargent/siliconv/pkg/codec"
	"github.com/ssargent/siliconv/pkg/replay"
)

// ExampleEntryCodec_basic demonstrates encoding and decoding a library entry
func ExampleEntryCodec_basic() {
	c := codec.NewEntryCodec()

	encoded, err := c.Encode(codec.NewEntry("level1.slc", replay.FormatSlc1, []byte("SLC3RPLY")))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", len(encoded))

	entry, err := c.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}
	if err := entry.Validate(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Name: %s\n", entry.Name)
	fmt.Printf("Format: %s\n", entry.Format)
	fmt.Printf("Data: %s\n", entry.Data)

	// Output:
	// Encoded 39 bytes
	// Name: level1.slc
	// Format: slc1
	// Data: SLC3RPLY
}

// ExampleEntryCodec_corruption demonstrates detecting a damaged entry
func ExampleEntryCodec_corruption() {
	c := codec.NewEntryCodec()

	encoded, err := c.Encode(codec.NewEntry("run.slc", replay.FormatSlc3, []byte{1, 2, 3}))
	if err != nil {
		log.Fatal(err)
	}
	encoded[len(encoded)-1] ^= 0xFF

	entry, err := c.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(entry.Validate() != nil)

	// Output:
	// true
}
