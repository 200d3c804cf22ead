package bufcrypt

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/digest"
	"github.com/cybroslabs/libbufcrypt-go/gcm"
)

type knownAnswer struct {
	name string
	alg  base.Algorithm
	key  string
	iv   string
	aad  string
	pt   string
	ct   string
	tag  string
}

var knownAnswers = []knownAnswer{
	{
		name: "aes128-gcm empty",
		alg:  base.AlgorithmAES128GCM,
		key:  "00000000000000000000000000000000",
		iv:   "000000000000000000000000",
		tag:  "58e2fccefa7e3061367f1d57a4e7455a",
	},
	{
		name: "aes256-gcm with aad",
		alg:  base.AlgorithmAES256GCM,
		key:  "feffe9928665731c6d6a8f9467308308feffe9928665731c6d6a8f9467308308",
		iv:   "cafebabefacedbaddecaf888",
		aad:  "feedfacedeadbeeffeedfacedeadbeefabaddad2",
		pt:   "d9313225f88406e5a55909c5aff5269a86a7a9531534f7da2e4c303d8a318a721c3c0c95956809532fcf0e2449a6b525b16aedf5aa0de657ba637b39",
		ct:   "522dc1f099567d07f47f37a32a84427d643a8cdcbfe5c0c97598a2bd2555d1aa8cb08e48590dbb3da7b08b1056828838c5f61e6393ba7a0abcc9f662",
		tag:  "76fc6ece0f4e1768cddf8853bb2d551b",
	},
}

func unhex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// SelfTest runs known answers through b, nil when everything matches.
func SelfTest(b gcm.Backend) error {
	for _, ka := range knownAnswers {
		key, iv, aad := unhex(ka.key), unhex(ka.iv), unhex(ka.aad)
		data := unhex(ka.pt)
		tag := make([]byte, base.GCM_TAG_LENGTH)
		if err := gcm.Seal(b, key, iv, aad, data, tag); err != nil {
			return fmt.Errorf("%s/%s: seal: %w", b.Name(), ka.name, err)
		}
		if !bytes.Equal(data, unhex(ka.ct)) || !bytes.Equal(tag, unhex(ka.tag)) {
			return fmt.Errorf("%s/%s: known answer mismatch", b.Name(), ka.name)
		}
		if err := gcm.Open(b, key, iv, aad, data, tag); err != nil {
			return fmt.Errorf("%s/%s: open: %w", b.Name(), ka.name, err)
		}
		if !bytes.Equal(data, unhex(ka.pt)) {
			return fmt.Errorf("%s/%s: decrypted data mismatch", b.Name(), ka.name)
		}
	}

	s := digest.Sum256([]byte("abc"))
	if hex.EncodeToString(s[:]) != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		return fmt.Errorf("sha256 known answer mismatch")
	}
	m := digest.SumMD5([]byte("abc"))
	if hex.EncodeToString(m[:]) != "900150983cd24fb0d6963f7d28e17f72" {
		return fmt.Errorf("md5 known answer mismatch")
	}
	return nil
}

// SelfTest checks the backend this instance runs on.
func (c *Crypto) SelfTest() error {
	err := SelfTest(c.backend)
	if err != nil {
		c.logger.Errorf("self test failed: %v", err)
	}
	return err
}
