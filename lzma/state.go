// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// number of supported states
const states = 12

// maxPosBits defines the number of bits of the position value that are used to
// to compute the posState value. The value is used to select the tree codec
// for length encoding and decoding.
const maxPosBits = MaxPB

// state1Probs are the probabilities selected by the state alone.
type state1Probs struct {
	isRep   prob
	isRepG0 prob
	isRepG1 prob
	isRepG2 prob
}

func initS1Probs(p []state1Probs) {
	for i := range p {
		p[i] = state1Probs{probInit, probInit, probInit, probInit}
	}
}

// state2Probs are selected by state and position state.
type state2Probs struct {
	isMatch     prob
	isRepG0Long prob
}

func initS2Probs(p []state2Probs) {
	for i := range p {
		p[i] = state2Probs{probInit, probInit}
	}
}

// state is the probability model shared by encoder and decoder. It
// contains all probabilities, the four recent distances and the state of
// the finite state machine tracking the recent symbol kinds.
type state struct {
	s1          [states]state1Probs
	s2          [states << maxPosBits]state2Probs
	litCodec    literalCodec
	lenCodec    lengthCodec
	repLenCodec lengthCodec
	distCodec   distCodec
	Properties
	rep        [4]uint32
	state      uint32
	posBitMask uint32
}

// init sets the properties and resets the model.
func (s *state) init(p Properties) {
	s.Properties = p
	s.reset()
}

// reset puts the model in the initial state for a new stream. Allocated
// probability arrays are reused.
func (s *state) reset() {
	initS1Probs(s.s1[:])
	initS2Probs(s.s2[:])
	s.litCodec.init(s.LC, s.LP)
	s.lenCodec.init()
	s.repLenCodec.init()
	s.distCodec.init()
	s.rep = [4]uint32{}
	s.state = 0
	s.posBitMask = s.posMask()
}

// updateStateLiteral updates the state for a literal.
func (s *state) updateStateLiteral() {
	s.state = nextStateLiteral(s.state)
}

// updateStateMatch updates the state for a match.
func (s *state) updateStateMatch() {
	s.state = nextStateMatch(s.state)
}

// updateStateRep updates the state for a repetition.
func (s *state) updateStateRep() {
	s.state = nextStateRep(s.state)
}

// updateStateShortRep updates the state for a short repetition.
func (s *state) updateStateShortRep() {
	s.state = nextStateShortRep(s.state)
}

// The state transitions. The optimal parser applies them to states that
// are not the state of the model.

func nextStateLiteral(s uint32) uint32 {
	switch {
	case s < 4:
		return 0
	case s < 10:
		return s - 3
	}
	return s - 6
}

func nextStateMatch(s uint32) uint32 {
	if s < 7 {
		return 7
	}
	return 10
}

func nextStateRep(s uint32) uint32 {
	if s < 7 {
		return 8
	}
	return 11
}

func nextStateShortRep(s uint32) uint32 {
	if s < 7 {
		return 9
	}
	return 11
}

// isCharState reports whether the last symbol has been a literal.
func isCharState(s uint32) bool { return s < 7 }

// states computes the states of the operation codec.
func (s *state) states(pos int64) (state1, state2, posState uint32) {
	state1 = s.state
	posState = uint32(pos) & s.posBitMask
	state2 = (s.state << maxPosBits) | posState
	return
}

// applyMatch updates reps and state for a new match with the given
// zero-based distance.
func (s *state) applyMatch(dist uint32) {
	s.rep[3], s.rep[2], s.rep[1] = s.rep[2], s.rep[1], s.rep[0]
	s.rep[0] = dist
	s.updateStateMatch()
}

// applyRep moves the rep distance with index g to the front.
func (s *state) applyRep(g int) {
	d := s.rep[g]
	copy(s.rep[1:g+1], s.rep[:g])
	s.rep[0] = d
	s.updateStateRep()
}
