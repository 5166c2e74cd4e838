package cpu

import (
	"fmt"

	"github.com/kikiginanjar16/emu-gb/util"
)

// regNames indexes the standard operand encoding: B C D E H L (HL) A.
var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var rrNames = [4]string{"BC", "DE", "HL", "SP"}

var aluNames = [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

var condNames = [4]string{"NZ", "Z", "NC", "C"}

func (cpu *CPU) getReg(i uint8) uint8 {
	switch i {
	case 0:
		return cpu.b
	case 1:
		return cpu.c
	case 2:
		return cpu.d
	case 3:
		return cpu.e
	case 4:
		return cpu.h
	case 5:
		return cpu.l
	case 6:
		return cpu.get8(cpu.HL())
	default:
		return cpu.a
	}
}

func (cpu *CPU) setReg(i uint8, val uint8) {
	switch i {
	case 0:
		cpu.b = val
	case 1:
		cpu.c = val
	case 2:
		cpu.d = val
	case 3:
		cpu.e = val
	case 4:
		cpu.h = val
	case 5:
		cpu.l = val
	case 6:
		cpu.set8(cpu.HL(), val)
	default:
		cpu.a = val
	}
}

func (cpu *CPU) getRR(i uint8) uint16 {
	switch i {
	case 0:
		return cpu.BC()
	case 1:
		return cpu.DE()
	case 2:
		return cpu.HL()
	default:
		return cpu.sp
	}
}

func (cpu *CPU) setRR(i uint8, val uint16) {
	switch i {
	case 0:
		cpu.SetBC(val)
	case 1:
		cpu.SetDE(val)
	case 2:
		cpu.SetHL(val)
	default:
		cpu.sp = val
	}
}

func (cpu *CPU) imm8() uint8 {
	return cpu.get8(cpu.pc + 1)
}

func (cpu *CPU) imm16() uint16 {
	return cpu.get16(cpu.pc + 1)
}

func (cpu *CPU) cond(i uint8) bool {
	switch i {
	case 0:
		return !cpu.FlagZ()
	case 1:
		return cpu.FlagZ()
	case 2:
		return !cpu.FlagC()
	default:
		return cpu.FlagC()
	}
}

// alu applies one of the eight accumulator operations. CP is SUB with the
// result discarded.
func (cpu *CPU) alu(op, val uint8) {
	switch op {
	case 0: // ADD
		res, c := add8(cpu.a, val, false)
		_, h := add4(cpu.a, val, false)
		cpu.SetFlagZNHC(res == 0, false, h, c)
		cpu.a = res
	case 1: // ADC
		carry := cpu.FlagC()
		res, c := add8(cpu.a, val, carry)
		_, h := add4(cpu.a, val, carry)
		cpu.SetFlagZNHC(res == 0, false, h, c)
		cpu.a = res
	case 2: // SUB
		res, c := sub8(cpu.a, val, false)
		_, h := sub4(cpu.a, val, false)
		cpu.SetFlagZNHC(res == 0, true, h, c)
		cpu.a = res
	case 3: // SBC
		borrow := cpu.FlagC()
		res, c := sub8(cpu.a, val, borrow)
		_, h := sub4(cpu.a, val, borrow)
		cpu.SetFlagZNHC(res == 0, true, h, c)
		cpu.a = res
	case 4: // AND
		cpu.a &= val
		cpu.SetFlagZNHC(cpu.a == 0, false, true, false)
	case 5: // XOR
		cpu.a ^= val
		cpu.SetFlagZNHC(cpu.a == 0, false, false, false)
	case 6: // OR
		cpu.a |= val
		cpu.SetFlagZNHC(cpu.a == 0, false, false, false)
	case 7: // CP
		res, c := sub8(cpu.a, val, false)
		_, h := sub4(cpu.a, val, false)
		cpu.SetFlagZNHC(res == 0, true, h, c)
	}
}

func (cpu *CPU) incReg(i uint8) {
	val := cpu.getReg(i)
	_, h := add4(val, 1, false)
	val++
	cpu.setReg(i, val)
	cpu.SetFlagZ(val == 0)
	cpu.SetFlagN(false)
	cpu.SetFlagH(h)
}

func (cpu *CPU) decReg(i uint8) {
	val := cpu.getReg(i)
	_, h := sub4(val, 1, false)
	val--
	cpu.setReg(i, val)
	cpu.SetFlagZ(val == 0)
	cpu.SetFlagN(true)
	cpu.SetFlagH(h)
}

// addHL sets N=0 and H/C from bit 11/15 carries; Z is untouched.
func (cpu *CPU) addHL(val uint16) {
	hl := cpu.HL()
	sum := hl + val
	cpu.SetFlagN(false)
	cpu.SetFlagH((hl&0x0fff)+(val&0x0fff) > 0x0fff)
	cpu.SetFlagC(sum < hl)
	cpu.SetHL(sum)
}

// addSPImm computes SP+r8 for ADD SP,r8 and LD HL,SP+r8. Flags come from the
// unsigned low-byte addition regardless of the offset's sign.
func (cpu *CPU) addSPImm(off int8) uint16 {
	_, c := add8(uint8(cpu.sp), uint8(off), false)
	_, h := add4(uint8(cpu.sp), uint8(off), false)
	cpu.SetFlagZNHC(false, false, h, c)
	return cpu.sp + uint16(int16(off))
}

func (cpu *CPU) daa() {
	a := cpu.a
	if !cpu.FlagN() {
		if cpu.FlagC() || a > 0x99 {
			a += 0x60
			cpu.SetFlagC(true)
		}
		if cpu.FlagH() || a&0x0f > 0x09 {
			a += 0x06
		}
	} else {
		if cpu.FlagC() {
			a -= 0x60
		}
		if cpu.FlagH() {
			a -= 0x06
		}
	}
	cpu.a = a
	cpu.SetFlagZ(a == 0)
	cpu.SetFlagH(false)
}

func (cpu *CPU) execute() (uint, error) {
	opcode := cpu.get8(cpu.pc)

	switch {
	case opcode == 0xcb:
		return cpu.executeCB(), nil

	case 0x40 <= opcode && opcode <= 0x7f && opcode != 0x76:
		// LD r, r'
		dst, src := opcode>>3&7, opcode&7
		cpu.trace("LD %s, %s", regNames[dst], regNames[src])
		cpu.setReg(dst, cpu.getReg(src))
		cpu.pc++
		if dst == 6 || src == 6 {
			return 8, nil
		}
		return 4, nil

	case 0x80 <= opcode && opcode <= 0xbf:
		op, src := opcode>>3&7, opcode&7
		cpu.trace("%s A, %s", aluNames[op], regNames[src])
		cpu.alu(op, cpu.getReg(src))
		cpu.pc++
		if src == 6 {
			return 8, nil
		}
		return 4, nil

	case opcode&0xc7 == 0x04 && opcode <= 0x3f:
		// INC r
		reg := opcode >> 3 & 7
		cpu.trace("INC %s", regNames[reg])
		cpu.incReg(reg)
		cpu.pc++
		if reg == 6 {
			return 12, nil
		}
		return 4, nil

	case opcode&0xc7 == 0x05 && opcode <= 0x3f:
		// DEC r
		reg := opcode >> 3 & 7
		cpu.trace("DEC %s", regNames[reg])
		cpu.decReg(reg)
		cpu.pc++
		if reg == 6 {
			return 12, nil
		}
		return 4, nil

	case opcode&0xc7 == 0x06 && opcode <= 0x3f:
		// LD r, d8
		reg := opcode >> 3 & 7
		val := cpu.imm8()
		cpu.trace("LD %s, 0x%02x", regNames[reg], val)
		cpu.setReg(reg, val)
		cpu.pc += 2
		if reg == 6 {
			return 12, nil
		}
		return 8, nil

	case opcode&0xcf == 0x01:
		// LD rr, d16
		rr := opcode >> 4
		val := cpu.imm16()
		cpu.trace("LD %s, 0x%04x", rrNames[rr], val)
		cpu.setRR(rr, val)
		cpu.pc += 3
		return 12, nil

	case opcode&0xcf == 0x03 && opcode <= 0x3f:
		// INC rr, no flags
		rr := opcode >> 4
		cpu.trace("INC %s", rrNames[rr])
		cpu.setRR(rr, cpu.getRR(rr)+1)
		cpu.pc++
		return 8, nil

	case opcode&0xcf == 0x0b && opcode <= 0x3f:
		// DEC rr, no flags
		rr := opcode >> 4
		cpu.trace("DEC %s", rrNames[rr])
		cpu.setRR(rr, cpu.getRR(rr)-1)
		cpu.pc++
		return 8, nil

	case opcode&0xcf == 0x09 && opcode <= 0x3f:
		// ADD HL, rr
		rr := opcode >> 4
		cpu.trace("ADD HL, %s", rrNames[rr])
		cpu.addHL(cpu.getRR(rr))
		cpu.pc++
		return 8, nil
	}

	switch opcode {
	case 0x00: // NOP
		cpu.trace("NOP")
		cpu.pc++
		return 4, nil

	case 0x02: // LD (BC), A
		cpu.trace("LD (BC), A")
		cpu.set8(cpu.BC(), cpu.a)
		cpu.pc++
		return 8, nil

	case 0x0a: // LD A, (BC)
		cpu.trace("LD A, (BC)")
		cpu.a = cpu.get8(cpu.BC())
		cpu.pc++
		return 8, nil

	case 0x12: // LD (DE), A
		cpu.trace("LD (DE), A")
		cpu.set8(cpu.DE(), cpu.a)
		cpu.pc++
		return 8, nil

	case 0x1a: // LD A, (DE)
		cpu.trace("LD A, (DE)")
		cpu.a = cpu.get8(cpu.DE())
		cpu.pc++
		return 8, nil

	case 0x22: // LD (HL+), A
		cpu.trace("LD (HL+), A")
		cpu.set8(cpu.HL(), cpu.a)
		cpu.SetHL(cpu.HL() + 1)
		cpu.pc++
		return 8, nil

	case 0x2a: // LD A, (HL+)
		cpu.trace("LD A, (HL+)")
		cpu.a = cpu.get8(cpu.HL())
		cpu.SetHL(cpu.HL() + 1)
		cpu.pc++
		return 8, nil

	case 0x32: // LD (HL-), A
		cpu.trace("LD (HL-), A")
		cpu.set8(cpu.HL(), cpu.a)
		cpu.SetHL(cpu.HL() - 1)
		cpu.pc++
		return 8, nil

	case 0x3a: // LD A, (HL-)
		cpu.trace("LD A, (HL-)")
		cpu.a = cpu.get8(cpu.HL())
		cpu.SetHL(cpu.HL() - 1)
		cpu.pc++
		return 8, nil

	case 0x08: // LD (a16), SP
		addr := cpu.imm16()
		cpu.trace("LD (0x%04x), SP", addr)
		cpu.bus.MMU.Set16(addr, cpu.sp)
		cpu.pc += 3
		return 20, nil

	case 0x07: // RLCA
		cpu.trace("RLCA")
		carry := cpu.a >> 7
		cpu.a = cpu.a<<1 | carry
		cpu.SetFlagZNHC(false, false, false, carry != 0)
		cpu.pc++
		return 4, nil

	case 0x0f: // RRCA
		cpu.trace("RRCA")
		carry := cpu.a & 1
		cpu.a = cpu.a>>1 | carry<<7
		cpu.SetFlagZNHC(false, false, false, carry != 0)
		cpu.pc++
		return 4, nil

	case 0x17: // RLA
		cpu.trace("RLA")
		carry := cpu.a >> 7
		cpu.a = cpu.a<<1 | util.BoolToU8(cpu.FlagC())
		cpu.SetFlagZNHC(false, false, false, carry != 0)
		cpu.pc++
		return 4, nil

	case 0x1f: // RRA
		cpu.trace("RRA")
		carry := cpu.a & 1
		cpu.a = cpu.a>>1 | util.BoolToU8(cpu.FlagC())<<7
		cpu.SetFlagZNHC(false, false, false, carry != 0)
		cpu.pc++
		return 4, nil

	case 0x27: // DAA
		cpu.trace("DAA")
		cpu.daa()
		cpu.pc++
		return 4, nil

	case 0x2f: // CPL
		cpu.trace("CPL")
		cpu.a = compl(cpu.a)
		cpu.SetFlagN(true)
		cpu.SetFlagH(true)
		cpu.pc++
		return 4, nil

	case 0x37: // SCF
		cpu.trace("SCF")
		cpu.SetFlagN(false)
		cpu.SetFlagH(false)
		cpu.SetFlagC(true)
		cpu.pc++
		return 4, nil

	case 0x3f: // CCF
		cpu.trace("CCF")
		cpu.SetFlagN(false)
		cpu.SetFlagH(false)
		cpu.SetFlagC(!cpu.FlagC())
		cpu.pc++
		return 4, nil

	case 0x18: // JR r8
		off := int8(cpu.imm8())
		cpu.trace("JR %d", off)
		cpu.pc += 2
		cpu.pc += uint16(int16(off))
		if off < 0 {
			return 12, cpu.watchBranch()
		}
		return 12, nil

	case 0x20, 0x28, 0x30, 0x38: // JR cc, r8
		ci := opcode >> 3 & 3
		off := int8(cpu.imm8())
		cpu.trace("JR %s, %d", condNames[ci], off)
		cpu.pc += 2
		if !cpu.cond(ci) {
			return 8, nil
		}
		cpu.pc += uint16(int16(off))
		if off < 0 {
			return 12, cpu.watchBranch()
		}
		return 12, nil

	case 0x10: // STOP
		cpu.trace("STOP")
		cpu.stopped = true
		cpu.pc += 2
		return 4, nil

	case 0x76: // HALT
		cpu.trace("HALT")
		// With IME clear and something already pending, HALT falls through
		// immediately.
		if cpu.ime || cpu.bus.IRQ.Pending() == 0 {
			cpu.halted = true
		}
		cpu.pc++
		return 4, nil

	case 0xc3: // JP a16
		addr := cpu.imm16()
		cpu.trace("JP 0x%04x", addr)
		cpu.pc = addr
		return 16, nil

	case 0xc2, 0xca, 0xd2, 0xda: // JP cc, a16
		ci := opcode >> 3 & 3
		addr := cpu.imm16()
		cpu.trace("JP %s, 0x%04x", condNames[ci], addr)
		if cpu.cond(ci) {
			cpu.pc = addr
			return 16, nil
		}
		cpu.pc += 3
		return 12, nil

	case 0xe9: // JP HL
		cpu.trace("JP HL")
		cpu.pc = cpu.HL()
		return 4, nil

	case 0xcd: // CALL a16
		addr := cpu.imm16()
		cpu.trace("CALL 0x%04x", addr)
		cpu.push16(cpu.pc + 3)
		cpu.pc = addr
		return 24, nil

	case 0xc4, 0xcc, 0xd4, 0xdc: // CALL cc, a16
		ci := opcode >> 3 & 3
		addr := cpu.imm16()
		cpu.trace("CALL %s, 0x%04x", condNames[ci], addr)
		if cpu.cond(ci) {
			cpu.push16(cpu.pc + 3)
			cpu.pc = addr
			return 24, nil
		}
		cpu.pc += 3
		return 12, nil

	case 0xc9: // RET
		cpu.trace("RET")
		cpu.pc = cpu.pop16()
		return 16, nil

	case 0xc0, 0xc8, 0xd0, 0xd8: // RET cc
		ci := opcode >> 3 & 3
		cpu.trace("RET %s", condNames[ci])
		if cpu.cond(ci) {
			cpu.pc = cpu.pop16()
			return 20, nil
		}
		cpu.pc++
		return 8, nil

	case 0xd9: // RETI
		cpu.trace("RETI")
		cpu.pc = cpu.pop16()
		cpu.ime = true
		return 16, nil

	case 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff: // RST n
		target := uint16(opcode & 0x38)
		cpu.trace("RST 0x%02x", target)
		cpu.push16(cpu.pc + 1)
		cpu.pc = target
		return 16, nil

	case 0xc1, 0xd1, 0xe1: // POP rr
		rr := opcode >> 4 & 3
		cpu.trace("POP %s", rrNames[rr])
		cpu.setRR(rr, cpu.pop16())
		cpu.pc++
		return 12, nil

	case 0xf1: // POP AF
		cpu.trace("POP AF")
		cpu.SetAF(cpu.pop16())
		cpu.pc++
		return 12, nil

	case 0xc5, 0xd5, 0xe5: // PUSH rr
		rr := opcode >> 4 & 3
		cpu.trace("PUSH %s", rrNames[rr])
		cpu.push16(cpu.getRR(rr))
		cpu.pc++
		return 16, nil

	case 0xf5: // PUSH AF
		cpu.trace("PUSH AF")
		cpu.push16(cpu.AF())
		cpu.pc++
		return 16, nil

	case 0xc6, 0xce, 0xd6, 0xde, 0xe6, 0xee, 0xf6, 0xfe: // ALU A, d8
		op := opcode >> 3 & 7
		val := cpu.imm8()
		cpu.trace("%s A, 0x%02x", aluNames[op], val)
		cpu.alu(op, val)
		cpu.pc += 2
		return 8, nil

	case 0xe0: // LDH (a8), A
		off := cpu.imm8()
		cpu.trace("LDH (0x%02x), A", off)
		cpu.set8(0xff00+uint16(off), cpu.a)
		cpu.pc += 2
		return 12, nil

	case 0xf0: // LDH A, (a8)
		off := cpu.imm8()
		cpu.trace("LDH A, (0x%02x)", off)
		cpu.a = cpu.get8(0xff00 + uint16(off))
		cpu.pc += 2
		return 12, nil

	case 0xe2: // LD (C), A
		cpu.trace("LD (C), A")
		cpu.set8(0xff00+uint16(cpu.c), cpu.a)
		cpu.pc++
		return 8, nil

	case 0xf2: // LD A, (C)
		cpu.trace("LD A, (C)")
		cpu.a = cpu.get8(0xff00 + uint16(cpu.c))
		cpu.pc++
		return 8, nil

	case 0xea: // LD (a16), A
		addr := cpu.imm16()
		cpu.trace("LD (0x%04x), A", addr)
		cpu.set8(addr, cpu.a)
		cpu.pc += 3
		return 16, nil

	case 0xfa: // LD A, (a16)
		addr := cpu.imm16()
		cpu.trace("LD A, (0x%04x)", addr)
		cpu.a = cpu.get8(addr)
		cpu.pc += 3
		return 16, nil

	case 0xe8: // ADD SP, r8
		off := int8(cpu.imm8())
		cpu.trace("ADD SP, %d", off)
		cpu.sp = cpu.addSPImm(off)
		cpu.pc += 2
		return 16, nil

	case 0xf8: // LD HL, SP+r8
		off := int8(cpu.imm8())
		cpu.trace("LD HL, SP%+d", off)
		cpu.SetHL(cpu.addSPImm(off))
		cpu.pc += 2
		return 12, nil

	case 0xf9: // LD SP, HL
		cpu.trace("LD SP, HL")
		cpu.sp = cpu.HL()
		cpu.pc++
		return 8, nil

	case 0xf3: // DI
		cpu.trace("DI")
		cpu.ime = false
		cpu.eiDelay = 0
		cpu.pc++
		return 4, nil

	case 0xfb: // EI
		cpu.trace("EI")
		if !cpu.ime && cpu.eiDelay == 0 {
			cpu.eiDelay = 2
		}
		cpu.pc++
		return 4, nil
	}

	return 0, fmt.Errorf("illegal opcode 0x%02x at 0x%04x", opcode, cpu.pc)
}
