// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spu

import (
	"fmt"
)

// nRF9160 peripheral instances by ID, the ID matches bits [19:12] of the
// peripheral base address and its IRQ number.
var names = map[int]string{
	3:  "SPU",
	4:  "REGULATORS",
	5:  "CLOCK_POWER",
	8:  "SERIAL0",
	9:  "SERIAL1",
	10: "SERIAL2",
	11: "SERIAL3",
	13: "GPIOTE0",
	14: "SAADC",
	15: "TIMER0",
	16: "TIMER1",
	17: "TIMER2",
	20: "RTC0",
	21: "RTC1",
	23: "DPPIC",
	24: "WDT",
	27: "EGU0",
	28: "EGU1",
	29: "EGU2",
	30: "EGU3",
	31: "EGU4",
	32: "EGU5",
	33: "PWM0",
	34: "PWM1",
	35: "PWM2",
	36: "PWM3",
	38: "PDM",
	40: "I2S",
	42: "IPC",
	44: "FPU",
	49: "GPIOTE1",
	57: "NVMC_KMU",
	58: "VMC",
	66: "P0",
}

// Name returns the peripheral instance name for an ID.
func Name(id int) string {
	if name, ok := names[id]; ok {
		return name
	}

	return fmt.Sprintf("ID%d", id)
}
