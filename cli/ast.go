// Copyright (c) 2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package cli

import (
	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Exit          *ExitCmd          `  @@` //nolint
	Help          *HelpCmd          `| @@` //nolint
	Hooks         *HooksCmd         `| @@` //nolint
	Journal       *JournalCmd       `| @@` //nolint
	LogLevel      *LogLevelCmd      `| @@` //nolint
	Notifications *NotificationsCmd `| @@` //nolint
	PreTx         *PreTxCmd         `| @@` //nolint
	Prio          *PrioCmd          `| @@` //nolint
	RxAckStarted  *RxAckStartedCmd  `| @@` //nolint
	RxStarted     *RxStartedCmd     `| @@` //nolint
	Stats         *StatsCmd         `| @@` //nolint
	Terminate     *TerminateCmd     `| @@` //nolint
	Transmitted   *TransmittedCmd   `| @@` //nolint
	Tx            *TxCmd            `| @@` //nolint
	TxFailed      *TxFailedCmd      `| @@` //nolint
	TxReady       *TxReadyCmd       `| @@` //nolint
	TxStarted     *TxStartedCmd     `| @@` //nolint
	Verdict       *VerdictCmd       `| @@` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

// noinspection GoStructTag
type HooksCmd struct {
	Cmd   struct{} `"hooks"`    //nolint
	Event *string  `[ @Ident ]` //nolint
}

// noinspection GoStructTag
type JournalCmd struct {
	Cmd   struct{} `"journal"`    //nolint
	Clear *string  `[ @"clear" ]` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`      //nolint
	Level string   `[ @Ident ]` //nolint
}

// noinspection GoStructTag
type NotificationsCmd struct {
	Cmd   struct{} `"notifications"` //nolint
	Flush *string  `[ @"flush" ]`    //nolint
}

// noinspection GoStructTag
type CcaFlag struct {
	Dummy struct{} `"cca"` //nolint
}

// noinspection GoStructTag
type PreTxCmd struct {
	Cmd   struct{} `"pretx"` //nolint
	Frame string   `@String` //nolint
	Cca   *CcaFlag `[ @@ ]`  //nolint
}

// noinspection GoStructTag
type PrioCmd struct {
	Cmd struct{} `"prio"`           //nolint
	Old string   `@( Ident | Int )` //nolint
	New string   `@( Ident | Int )` //nolint
}

// noinspection GoStructTag
type RxAckStartedCmd struct {
	Cmd struct{} `"rxackstarted"` //nolint
}

// noinspection GoStructTag
type RxStartedCmd struct {
	Cmd   struct{} `"rxstarted"` //nolint
	Frame string   `@String`     //nolint
}

// noinspection GoStructTag
type StatsCmd struct {
	Cmd   struct{} `"stats"`      //nolint
	Reset *string  `[ @"reset" ]` //nolint
}

// noinspection GoStructTag
type TerminateCmd struct {
	Cmd   struct{} `"terminate"`            //nolint
	Level string   `@( "none" | "802154" )` //nolint
	Orig  *string  `[ @Ident ]`             //nolint
}

// noinspection GoStructTag
type TransmittedCmd struct {
	Cmd   struct{} `"transmitted"` //nolint
	Frame string   `@String`       //nolint
}

// noinspection GoStructTag
type TxCmd struct {
	Cmd   struct{} `"tx"`    //nolint
	Frame string   `@String` //nolint
	Cca   *CcaFlag `[ @@ ]`  //nolint
}

// noinspection GoStructTag
type TxFailedCmd struct {
	Cmd   struct{} `"txfailed"` //nolint
	Frame string   `@String`    //nolint
	Error string   `@Ident`     //nolint
}

// noinspection GoStructTag
type TxReadyCmd struct {
	Cmd   struct{} `"txready"`                 //nolint
	Frame string   `@String`                   //nolint
	Ready string   `@( "ready" | "notready" )` //nolint
}

// noinspection GoStructTag
type TxStartedCmd struct {
	Cmd   struct{} `"txstarted"` //nolint
	Frame string   `@String`     //nolint
}

// noinspection GoStructTag
type VerdictCmd struct {
	Cmd     struct{} `"verdict"`                 //nolint
	Feature string   `@Ident`                    //nolint
	Event   string   `@Ident`                    //nolint
	Verdict string   `@( "approve" | "reject" )` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}
