package gallery

// Snippet sources, shown to learners as-is.
const (
	srcHello = `# Hello World!
print("안녕하세요!")
print("Python에 오신 것을 환영합니다!")`

	srcInput = `# 입력(input) 예제
이름 = input("이름을 입력하세요: ")
나이 = input("나이를 입력하세요: ")
print(이름 + "님, 안녕하세요!")
print("내년에는 " + str(int(나이) + 1) + "살이 되시네요!")`

	srcLoop = `# 반복문 예제
for i in range(1, 10):
    for j in range(1, 10):
        print(f"{i} x {j} = {i*j:2d}", end="  ")
    print()`

	srcFunction = `# 함수 예제
def 인사(이름, 횟수=3):
    for i in range(횟수):
        print(f"{i+1}번째 인사: 안녕, {이름}!")

인사("파이썬")
print("---")
인사("코딩", 2)`

	srcList = `# 리스트 예제
과일 = ["사과", "바나나", "체리", "딸기", "포도"]

print("== 과일 목록 ==")
for i, 이름 in enumerate(과일, 1):
    print(f"  {i}. {이름}")

print(f"\n총 {len(과일)}개의 과일이 있습니다.")
print(f"첫 번째: {과일[0]}")
print(f"마지막: {과일[-1]}")

# 리스트 컴프리헨션
긴과일 = [f for f in 과일 if len(f) >= 2]
print(f"\n2글자 이상 과일: {긴과일}")`

	srcTurtle = `# 거북이 그래픽 - 다각형
import turtle

t = turtle.Turtle()
t.speed(8)

색깔 = ["red", "blue", "green", "orange", "purple", "cyan"]

for i in range(6):
    t.pencolor(색깔[i])
    t.pensize(3)
    변 = i + 3  # 삼각형부터 팔각형까지
    for j in range(변):
        t.forward(60)
        t.left(360 / 변)
    t.penup()
    t.forward(80)
    t.pendown()`

	srcTurtle2 = `# 거북이 그래픽 - 컬러 나선
import turtle

t = turtle.Turtle()
t.speed(0)

for i in range(200):
    r = i * 255 // 200
    g = (200 - i) * 255 // 200
    b = 128
    t.pencolor(r / 255.0, g / 255.0, b / 255.0)
    t.pensize(max(1, i // 40))
    t.forward(i * 0.8)
    t.left(59)`

	srcGame = `# 숫자 맞추기 게임
import random

print("=== 숫자 맞추기 게임 ===")
print("1부터 20 사이의 숫자를 맞춰보세요!\n")

정답 = random.randint(1, 20)
시도 = 0

while True:
    시도 += 1
    추측 = int(input(f"[{시도}번째 시도] 숫자를 입력하세요: "))
    
    if 추측 < 정답:
        print("  ↑ 더 큰 숫자입니다!")
    elif 추측 > 정답:
        print("  ↓ 더 작은 숫자입니다!")
    else:
        print(f"\n🎉 정답! {시도}번 만에 맞추셨습니다!")
        break`
)
