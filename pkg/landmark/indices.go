package landmark

// Pose landmark indices following the MediaPipe Pose convention.
const (
	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
)

// Hand landmark indices following the MediaPipe Hands convention.
const (
	HandWrist     = 0
	HandThumbTip  = 4
	HandIndexTip  = 8
	HandMiddleTip = 12
	HandRingTip   = 16
	HandPinkyTip  = 20
)

// Face mesh indices used by the analyzers. The face mesh has 468 points
// (478 when iris refinement is enabled; the iris points start at 468).
const (
	// Left eye contour, EAR order p1..p6 (p1-p4 horizontal, p2-p6 and
	// p3-p5 vertical pairs).
	FaceLeftEyeOuter   = 33
	FaceLeftEyeTop1    = 160
	FaceLeftEyeTop2    = 158
	FaceLeftEyeInner   = 133
	FaceLeftEyeBottom1 = 153
	FaceLeftEyeBottom2 = 144

	// Right eye contour, EAR order p1..p6.
	FaceRightEyeInner   = 362
	FaceRightEyeTop1    = 387
	FaceRightEyeTop2    = 385
	FaceRightEyeOuter   = 263
	FaceRightEyeBottom1 = 380
	FaceRightEyeBottom2 = 373

	// Eyelid midpoints used for gaze estimation.
	FaceLeftEyeLidTop     = 159
	FaceLeftEyeLidBottom  = 145
	FaceRightEyeLidTop    = 386
	FaceRightEyeLidBottom = 374

	// Face extent references.
	FaceLeftTemple  = 234
	FaceRightTemple = 454
	FaceForehead    = 10
	FaceChin        = 152
	FaceNoseTip     = 1

	// Lips.
	FaceUpperLipCenter = 13
	FaceLowerLipCenter = 14
	FaceMouthLeft      = 61
	FaceMouthRight     = 291
	FaceLeftLowerLip   = 84
	FaceRightLowerLip  = 314

	// Brows.
	FaceLeftBrowInner  = 55
	FaceRightBrowInner = 285

	// Iris center (refined landmarks only).
	FaceLeftIris = 468
)

// LeftEyeEAR returns the six left-eye contour points in EAR order.
func LeftEyeEAR(face []Landmark) [6]Landmark {
	return [6]Landmark{
		face[FaceLeftEyeOuter],
		face[FaceLeftEyeTop1],
		face[FaceLeftEyeTop2],
		face[FaceLeftEyeInner],
		face[FaceLeftEyeBottom1],
		face[FaceLeftEyeBottom2],
	}
}

// RightEyeEAR returns the six right-eye contour points in EAR order.
func RightEyeEAR(face []Landmark) [6]Landmark {
	return [6]Landmark{
		face[FaceRightEyeInner],
		face[FaceRightEyeTop1],
		face[FaceRightEyeTop2],
		face[FaceRightEyeOuter],
		face[FaceRightEyeBottom1],
		face[FaceRightEyeBottom2],
	}
}

// Inner-lip index pairs used for the trimmed-mean lip opening measure.
var (
	UpperInnerLip = [5]int{13, 82, 81, 80, 78}
	LowerInnerLip = [5]int{14, 87, 178, 88, 95}
)
