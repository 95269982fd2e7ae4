package auth

import "testing"

func TestThrottleLocksAfterMaxAttempts(t *testing.T) {
	throttle := newLoginThrottle()
	ip := "192.0.2.1"

	if wait := throttle.check(ip); wait != 0 {
		t.Fatalf("fresh ip should not be locked, wait = %v", wait)
	}

	for i := 0; i < maxLoginAttempts-1; i++ {
		if remaining := throttle.fail(ip); remaining != maxLoginAttempts-i-1 {
			t.Fatalf("attempt %d: remaining = %d", i+1, remaining)
		}
		if wait := throttle.check(ip); wait != 0 {
			t.Fatalf("should not be locked before max attempts, wait = %v", wait)
		}
	}

	if remaining := throttle.fail(ip); remaining != 0 {
		t.Fatalf("final attempt should exhaust remaining, got %d", remaining)
	}
	if wait := throttle.check(ip); wait <= 0 {
		t.Fatal("expected ip to be locked after max attempts")
	}
}

func TestThrottleResetClearsLock(t *testing.T) {
	throttle := newLoginThrottle()
	ip := "192.0.2.2"

	for i := 0; i < maxLoginAttempts; i++ {
		throttle.fail(ip)
	}
	if wait := throttle.check(ip); wait <= 0 {
		t.Fatal("expected ip to be locked")
	}

	throttle.reset(ip)
	if wait := throttle.check(ip); wait != 0 {
		t.Fatalf("reset should clear the lock, wait = %v", wait)
	}
}

func TestThrottleTracksIPsIndependently(t *testing.T) {
	throttle := newLoginThrottle()

	for i := 0; i < maxLoginAttempts; i++ {
		throttle.fail("192.0.2.3")
	}
	if wait := throttle.check("192.0.2.4"); wait != 0 {
		t.Fatalf("unrelated ip should not be locked, wait = %v", wait)
	}
}
