package cpu

import "github.com/kikiginanjar16/emu-gb/util"

var cbNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

// executeCB runs one 0xCB-prefixed instruction. The whole page decodes
// uniformly: rotates/shifts in the first quarter, then BIT, RES, SET with the
// bit number in bits 3-5 and the operand register in bits 0-2.
func (cpu *CPU) executeCB() uint {
	opcode := cpu.get8(cpu.pc + 1)
	reg := opcode & 7
	cpu.pc += 2

	switch {
	case opcode < 0x40:
		op := opcode >> 3
		cpu.trace("%s %s", cbNames[op], regNames[reg])
		cpu.setReg(reg, cpu.rotShift(op, cpu.getReg(reg)))

	case opcode < 0x80: // BIT n, r
		n := int(opcode >> 3 & 7)
		cpu.trace("BIT %d, %s", n, regNames[reg])
		cpu.SetFlagZ(!bitN8(cpu.getReg(reg), n))
		cpu.SetFlagN(false)
		cpu.SetFlagH(true)
		if reg == 6 {
			return 12
		}
		return 8

	case opcode < 0xc0: // RES n, r
		n := opcode >> 3 & 7
		cpu.trace("RES %d, %s", n, regNames[reg])
		cpu.setReg(reg, cpu.getReg(reg)&compl(1<<n))

	default: // SET n, r
		n := opcode >> 3 & 7
		cpu.trace("SET %d, %s", n, regNames[reg])
		cpu.setReg(reg, cpu.getReg(reg)|1<<n)
	}

	if reg == 6 {
		return 16
	}
	return 8
}

// rotShift applies one of the eight rotate/shift operations and sets ZNHC.
func (cpu *CPU) rotShift(op, val uint8) uint8 {
	var res uint8
	var carry bool
	switch op {
	case 0: // RLC
		carry = val>>7 != 0
		res = val<<1 | val>>7
	case 1: // RRC
		carry = val&1 != 0
		res = val>>1 | val<<7
	case 2: // RL
		carry = val>>7 != 0
		res = val<<1 | util.BoolToU8(cpu.FlagC())
	case 3: // RR
		carry = val&1 != 0
		res = val>>1 | util.BoolToU8(cpu.FlagC())<<7
	case 4: // SLA
		carry = val>>7 != 0
		res = val << 1
	case 5: // SRA, sign-preserving
		carry = val&1 != 0
		res = val>>1 | val&0x80
	case 6: // SWAP
		carry = false
		res = val<<4 | val>>4
	default: // SRL
		carry = val&1 != 0
		res = val >> 1
	}
	cpu.SetFlagZNHC(res == 0, false, false, carry)
	return res
}
