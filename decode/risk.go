package decode

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// assessRisk tags the decoded call for reviewer triage. Tags are additive
// hints, the highest one wins.
func (d *Decoder) assessRisk(call *Call, method *abi.Method, dc *DecodedCall) {
	level := RiskLow
	reasons := []string{}
	raise := func(to RiskLevel, reason string) {
		reasons = append(reasons, reason)
		if to == RiskHigh || (to == RiskElevated && level == RiskLow) {
			level = to
		}
	}

	if call.Operation == opDelegateCall {
		raise(RiskHigh, "delegatecall executes foreign code in the Safe context")
	}
	if call.Value != nil && d.cfg.HighValueWei != nil && call.Value.Cmp(d.cfg.HighValueWei) >= 0 {
		raise(RiskHigh, "transfers a large native value")
	}
	if method != nil {
		if method.Payable {
			raise(RiskElevated, "target function is payable")
		}
		for _, arg := range method.Inputs {
			if arg.Type.T == abi.SliceTy || arg.Type.T == abi.ArrayTy {
				raise(RiskElevated, "batch parameter may hide many operations")
				break
			}
		}
	}
	if dc.Fallback {
		raise(RiskElevated, "calldata could not be decoded against a known ABI")
	}

	dc.Risk = level
	if len(reasons) > 0 {
		dc.RiskReasons = reasons
	}
}
