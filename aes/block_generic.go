package aes

// table driven rounds over the expanded schedule, state is column major like the input
type genericEngine struct{}

func (genericEngine) Name() string { return "generic" }

func (genericEngine) NewBlock(key []byte) (Block, error) {
	s, err := ExpandKey(key)
	if err != nil {
		return nil, err
	}
	b := &genericBlock{rounds: s.rounds}
	for i := 0; i <= s.rounds; i++ {
		s.RoundKey(b.rk[i][:], i)
	}
	s.Wipe()
	return b, nil
}

type genericBlock struct {
	rk     [maxRounds + 1][BlockSize]byte
	rounds int
}

func (b *genericBlock) BlockSize() int { return BlockSize }
func (b *genericBlock) Rounds() int    { return b.rounds }

func (b *genericBlock) Encrypt(dst, src []byte) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic("aes: input not full block")
	}
	var st [BlockSize]byte
	copy(st[:], src)

	addRoundKey(&st, &b.rk[0])
	for r := 1; r < b.rounds; r++ {
		shiftRows(&st)
		subBytes(&st)
		mixColumns(&st)
		addRoundKey(&st, &b.rk[r])
	}
	shiftRows(&st)
	subBytes(&st)
	addRoundKey(&st, &b.rk[b.rounds])

	copy(dst, st[:])
}

func addRoundKey(st, rk *[BlockSize]byte) {
	for i := range st {
		st[i] ^= rk[i]
	}
}

func subBytes(st *[BlockSize]byte) {
	for i, v := range st {
		st[i] = sbox[v]
	}
}

// row r moves r columns to the left, st[r+4c] is row r column c
func shiftRows(st *[BlockSize]byte) {
	st[1], st[5], st[9], st[13] = st[5], st[9], st[13], st[1]
	st[2], st[6], st[10], st[14] = st[10], st[14], st[2], st[6]
	st[3], st[7], st[11], st[15] = st[15], st[3], st[7], st[11]
}

func mixColumns(st *[BlockSize]byte) {
	for c := 0; c < BlockSize; c += 4 {
		a0, a1, a2, a3 := st[c], st[c+1], st[c+2], st[c+3]
		t := a0 ^ a1 ^ a2 ^ a3
		st[c] = a0 ^ t ^ xtime(a0^a1)
		st[c+1] = a1 ^ t ^ xtime(a1^a2)
		st[c+2] = a2 ^ t ^ xtime(a2^a3)
		st[c+3] = a3 ^ t ^ xtime(a3^a0)
	}
}
